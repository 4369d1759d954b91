package httpdto

import "github.com/eidan66/wedding-album-sub000/internal/domain/media"

// UploadURLRequest is used for POST /upload-url
type UploadURLRequest struct {
	Filename     string `json:"filename" binding:"required"`
	Filetype     string `json:"filetype" binding:"required"`
	Filesize     int64  `json:"filesize"`
	Title        string `json:"title,omitempty"`
	UploaderName string `json:"uploaderName,omitempty"`
}

// UploadURLResponse is returned with a presigned single-object PUT URL
type UploadURLResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignRequest is used for POST /uploads/presign
type PresignRequest struct {
	CoupleID string `json:"coupleId" binding:"required"`
	FileName string `json:"fileName" binding:"required"`
	Mime     string `json:"mime" binding:"required"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// BatchPresignRequest is used for POST /uploads/presign/batch
type BatchPresignRequest struct {
	Files []UploadURLRequest `json:"files" binding:"required"`
}

// BatchPresignResponse returns one URL per requested file, in request order
type BatchPresignResponse struct {
	URLs []UploadURLResponse `json:"urls"`
}

// MultipartCreateRequest is used for POST /uploads/multipart/create
type MultipartCreateRequest struct {
	FileName     string `json:"fileName" binding:"required"`
	Mime         string `json:"mime" binding:"required"`
	Size         int64  `json:"size"`
	Title        string `json:"title,omitempty"`
	UploaderName string `json:"uploaderName,omitempty"`
	CoupleID     string `json:"coupleId,omitempty"`
}

// MultipartCreateResponse identifies the opened session
type MultipartCreateResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
	Bucket   string `json:"bucket"`
}

// MultipartPartsRequest is used for POST /uploads/multipart/parts
type MultipartPartsRequest struct {
	Key         string  `json:"key" binding:"required"`
	UploadID    string  `json:"uploadId" binding:"required"`
	PartNumbers []int32 `json:"partNumbers" binding:"required"`
}

// PartURLResponse is one presigned part upload URL
type PartURLResponse struct {
	PartNumber int32  `json:"partNumber"`
	URL        string `json:"url"`
}

// CompletedPartDTO mirrors the storage backend's part descriptor
type CompletedPartDTO struct {
	ETag       string `json:"ETag" binding:"required"`
	PartNumber int32  `json:"PartNumber" binding:"required"`
}

// MultipartCompleteRequest is used for POST /uploads/multipart/complete
type MultipartCompleteRequest struct {
	Key          string             `json:"key" binding:"required"`
	UploadID     string             `json:"uploadId" binding:"required"`
	Parts        []CompletedPartDTO `json:"parts" binding:"required"`
	Title        string             `json:"title,omitempty"`
	UploaderName string             `json:"uploaderName,omitempty"`
}

// MultipartCompleteResponse reports the finalized object and its record
type MultipartCompleteResponse struct {
	Success   bool       `json:"success"`
	Location  string     `json:"location"`
	MediaItem media.Item `json:"mediaItem"`
}

// MultipartAbortRequest is used for POST /uploads/multipart/abort
type MultipartAbortRequest struct {
	Key      string `json:"key" binding:"required"`
	UploadID string `json:"uploadId" binding:"required"`
}

// MultipartAbortResponse acknowledges a best-effort abort
type MultipartAbortResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
