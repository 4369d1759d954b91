package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eidan66/wedding-album-sub000/internal/domain/media"
	"github.com/eidan66/wedding-album-sub000/internal/transport/httpdto"

	"github.com/hashicorp/go-retryablehttp"
)

// APIClient talks to the album server's presign and media endpoints. Each
// call issues exactly one request: the attempt budget and backoff for
// metadata calls live in the callers' shared retry helper, so transport-level
// retries cannot multiply the budget. retryablehttp still contributes its
// rewindable request bodies and error classification.
type APIClient struct {
	baseURL string
	http    *retryablehttp.Client
}

func NewAPIClient(baseURL string) *APIClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	return &APIClient{baseURL: baseURL, http: client}
}

// APIError is a non-2xx response from the album server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Temporary reports whether a retry could possibly succeed. Client errors
// need a corrected request, not a re-sent one.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// HTTPClient exposes the underlying client for byte transfers so the whole
// pipeline can share one transport.
func (c *APIClient) HTTPClient() *http.Client {
	return c.http.HTTPClient
}

func (c *APIClient) UploadURL(ctx context.Context, req httpdto.UploadURLRequest) (httpdto.UploadURLResponse, error) {
	var out httpdto.UploadURLResponse
	err := c.postJSON(ctx, "/upload-url", req, &out)
	return out, err
}

func (c *APIClient) PresignBatch(ctx context.Context, req httpdto.BatchPresignRequest) (httpdto.BatchPresignResponse, error) {
	var out httpdto.BatchPresignResponse
	err := c.postJSON(ctx, "/uploads/presign/batch", req, &out)
	return out, err
}

func (c *APIClient) MultipartCreate(ctx context.Context, req httpdto.MultipartCreateRequest) (httpdto.MultipartCreateResponse, error) {
	var out httpdto.MultipartCreateResponse
	err := c.postJSON(ctx, "/uploads/multipart/create", req, &out)
	return out, err
}

func (c *APIClient) MultipartParts(ctx context.Context, req httpdto.MultipartPartsRequest) ([]httpdto.PartURLResponse, error) {
	var out []httpdto.PartURLResponse
	err := c.postJSON(ctx, "/uploads/multipart/parts", req, &out)
	return out, err
}

func (c *APIClient) MultipartComplete(ctx context.Context, req httpdto.MultipartCompleteRequest) (httpdto.MultipartCompleteResponse, error) {
	var out httpdto.MultipartCompleteResponse
	err := c.postJSON(ctx, "/uploads/multipart/complete", req, &out)
	return out, err
}

func (c *APIClient) MultipartAbort(ctx context.Context, req httpdto.MultipartAbortRequest) error {
	var out httpdto.MultipartAbortResponse
	return c.postJSON(ctx, "/uploads/multipart/abort", req, &out)
}

func (c *APIClient) CreateMedia(ctx context.Context, req httpdto.CreateMediaRequest) (media.Item, error) {
	var out media.Item
	err := c.postJSON(ctx, "/media", req, &out)
	return out, err
}

func (c *APIClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unwrapAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func unwrapAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var envelope httpdto.Response[any]
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.Code = envelope.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
