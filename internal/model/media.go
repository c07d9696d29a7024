package model

import "errors"

const (
	MaxUploadSizeBytes = 1 << 20 // 1MB
	UploadFormField    = "file0"

	AvatarWidth       = 200
	AvatarHeight      = 200
	AvatarFolder      = "avatars"
	AvatarPrefix      = "avatar"
	AvatarExt         = ".jpg"
	PublicationFolder = "publications"
	PublicationPrefix = "publication"
	MediaCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
)

var imageExtensions = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeFileRequired     = "FILE_REQUIRED"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file exceeds 1MB limit")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrFileRequired     = errors.New("no file uploaded")
)

// UploadResult is where an upload landed. URL is what gets stored on the record.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := imageExtensions[contentType]
	return ok
}

// ImageExtension returns the file extension stored for an allowed content type.
func ImageExtension(contentType string) string {
	return imageExtensions[contentType]
}
