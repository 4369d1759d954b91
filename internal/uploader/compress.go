package uploader

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
)

// CompressOptions bounds client-side image recompression before transfer.
type CompressOptions struct {
	Enabled      bool
	MaxDimension int
	JPEGQuality  int
}

// DefaultCompressOptions mirrors what the gallery serves: long edge capped
// at 2048px, JPEG quality 82.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		Enabled:      true,
		MaxDimension: 2048,
		JPEGQuality:  82,
	}
}

// maybeCompress recompresses an image in memory. Any failure, or a result
// that is not smaller than the input, falls back to the original bytes;
// compression must never block or fail an upload. The returned mime type is
// image/jpeg when recompression took place.
func maybeCompress(data []byte, mimeType string, opts CompressOptions) ([]byte, string) {
	if !opts.Enabled || !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return data, mimeType
	}
	// GIFs lose animation if re-encoded
	if strings.EqualFold(mimeType, "image/gif") {
		return data, mimeType
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, mimeType
	}

	bounds := img.Bounds()
	if opts.MaxDimension > 0 && (bounds.Dx() > opts.MaxDimension || bounds.Dy() > opts.MaxDimension) {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality)); err != nil {
		return data, mimeType
	}
	if buf.Len() >= len(data) {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}
