package httpdto

// CreateMediaRequest is used for POST /media
type CreateMediaRequest struct {
	MediaURL     string `json:"media_url" binding:"required"`
	Title        string `json:"title,omitempty"`
	MediaType    string `json:"media_type" binding:"required"`
	UploaderName string `json:"uploader_name" binding:"required"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// ListMediaRequest holds query parameters for GET /media
type ListMediaRequest struct {
	MediaType string `form:"media_type"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// AccessVerifyRequest is used for POST /access/verify
type AccessVerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// AccessVerifyResponse carries the issued session token
type AccessVerifyResponse struct {
	Token string `json:"token"`
}
