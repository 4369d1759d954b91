package storage

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	PresignTTL time.Duration
	PartURLTTL time.Duration
}

type Client struct {
	cfg     S3Config
	s3      *s3.Client
	presign *s3.PresignClient
}

// CompletedPart pairs a part number with the ETag the storage backend
// returned for it.
type CompletedPart struct {
	ETag       string
	PartNumber int32
}

// OpenUpload describes an in-progress multipart session on the backend.
type OpenUpload struct {
	Key       string
	UploadID  string
	Initiated time.Time
}

func NewClient(ctx context.Context, cfg S3Config) (*Client, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if parsed, err := url.Parse(endpoint); err == nil {
			endpoint = parsed.String()
		}
		opts = append(opts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})
	presignClient := s3.NewPresignClient(s3Client)

	return &Client{
		cfg:     cfg,
		s3:      s3Client,
		presign: presignClient,
	}, nil
}

func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// PresignPut returns a time-limited PUT URL for key plus the headers the
// caller must send with the upload. Object metadata is attached at presign
// time so it travels with the PUT.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, sizeBytes int64, metadata map[string]string) (string, map[string]string, error) {
	if c == nil {
		return "", nil, errors.New("s3 client not initialized")
	}
	if key == "" {
		return "", nil, errors.New("object key is required")
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if sizeBytes > 0 {
		input.ContentLength = aws.Int64(sizeBytes)
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	presigned, err := c.presign.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		if c.cfg.PresignTTL > 0 {
			po.Expires = c.cfg.PresignTTL
		}
	})
	if err != nil {
		return "", nil, err
	}

	// The uploader must echo every signed header or the signature check fails.
	headers := map[string]string{}
	for name, values := range presigned.SignedHeader {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	if sizeBytes > 0 {
		headers["Content-Length"] = strconv.FormatInt(sizeBytes, 10)
	}

	return presigned.URL, headers, nil
}

// CreateMultipart opens a multipart session for key and returns its upload id.
func (c *Client) CreateMultipart(ctx context.Context, key, contentType string, metadata map[string]string) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	input := &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	out, err := c.s3.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", err
	}
	if out.UploadId == nil {
		return "", errors.New("create multipart upload returned no upload id")
	}
	return *out.UploadId, nil
}

// PresignUploadPart returns a presigned PUT URL for one part of an open
// multipart session. Part URLs use the longer TTL since large-file parts may
// be retried or delayed on slow networks.
func (c *Client) PresignUploadPart(ctx context.Context, key, uploadID string, partNumber int32) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	presigned, err := c.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(c.cfg.Bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
	}, func(po *s3.PresignOptions) {
		if c.cfg.PartURLTTL > 0 {
			po.Expires = c.cfg.PartURLTTL
		}
	})
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// CompleteMultipart finalizes an open session. Parts are sorted by part
// number before the call; the backend requires ascending order to reassemble
// the object.
func (c *Client) CompleteMultipart(ctx context.Context, key, uploadID string, parts []CompletedPart) (string, error) {
	if c == nil {
		return "", errors.New("s3 client not initialized")
	}
	sorted := sortedParts(parts)

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, p := range sorted {
		completed = append(completed, types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(p.PartNumber),
		})
	}

	out, err := c.s3.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return "", err
	}

	location := ""
	if out.Location != nil {
		location = *out.Location
	}
	if location == "" {
		location = c.FileURL(key)
	}
	return location, nil
}

func sortedParts(parts []CompletedPart) []CompletedPart {
	sorted := make([]CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})
	return sorted
}

// AbortMultipart releases an open session and its stored parts.
func (c *Client) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if c == nil {
		return errors.New("s3 client not initialized")
	}
	_, err := c.s3.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.cfg.Bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	return err
}

// ListOpenUploads returns multipart sessions under prefix that were
// initiated before cutoff.
func (c *Client) ListOpenUploads(ctx context.Context, prefix string, cutoff time.Time) ([]OpenUpload, error) {
	if c == nil {
		return nil, errors.New("s3 client not initialized")
	}
	out, err := c.s3.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
		Bucket: aws.String(c.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, err
	}

	var stale []OpenUpload
	for _, u := range out.Uploads {
		if u.Key == nil || u.UploadId == nil {
			continue
		}
		initiated := time.Time{}
		if u.Initiated != nil {
			initiated = *u.Initiated
		}
		if initiated.After(cutoff) {
			continue
		}
		stale = append(stale, OpenUpload{
			Key:       *u.Key,
			UploadID:  *u.UploadId,
			Initiated: initiated,
		})
	}
	return stale, nil
}

// FileURL returns the public URL for a stored object, or "" when no public
// base is configured.
func (c *Client) FileURL(key string) string {
	if c == nil || key == "" {
		return ""
	}
	if c.cfg.PublicBase != "" {
		return c.cfg.PublicBase + "/" + key
	}
	return ""
}
