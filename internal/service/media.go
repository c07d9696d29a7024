package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/karen-colon/b3-backend-social-net/internal/config"
	domain "github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
)

// ObjectStore is the subset of the S3 client the media service uses.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MediaService validates uploads and writes them to S3-compatible object storage.
// Only the returned public URL is persisted by callers.
type MediaService struct {
	store     ObjectStore
	bucket    string
	publicURL string
}

// NewMediaService builds an S3 client for the configured endpoint (R2, MinIO, S3).
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if !cfg.StorageConfigured() {
		return nil, fmt.Errorf("missing object storage configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for object storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	return NewMediaServiceWithStore(client, cfg.StorageBucket, cfg.StoragePublicURL), nil
}

func NewMediaServiceWithStore(store ObjectStore, bucket, publicURL string) *MediaService {
	return &MediaService{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// UploadAvatar enforces size/type, normalizes to 200x200 JPEG and stores it.
func (s *MediaService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, _, err := readAndValidateImage(file, header, domain.MaxUploadSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, domain.AvatarWidth, domain.AvatarHeight, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s-%s%s", domain.AvatarFolder, domain.AvatarPrefix, uuid.NewString(), domain.AvatarExt)
	if err := s.putObject(ctx, key, jpegBytes, domain.ContentTypeJPEG); err != nil {
		return nil, err
	}

	monitoring.MediaUploads.WithLabelValues("avatar").Inc()
	return &domain.UploadResult{URL: s.urlFor(key), Key: key}, nil
}

// UploadPublicationMedia stores the image as uploaded, keyed by a fresh public id.
func (s *MediaService) UploadPublicationMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, contentType, err := readAndValidateImage(file, header, domain.MaxUploadSizeBytes)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s-%s%s", domain.PublicationFolder, domain.PublicationPrefix, uuid.NewString(), domain.ImageExtension(contentType))
	if err := s.putObject(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	monitoring.MediaUploads.WithLabelValues("publication").Inc()
	return &domain.UploadResult{URL: s.urlFor(key), Key: key}, nil
}

func (s *MediaService) urlFor(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, "", domain.ErrInvalidImageType
	}

	return data, contentType, nil
}

// resizeToJPEG centers/crops to target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImageType, err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(domain.MediaCacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to object storage: %w", err)
	}
	return nil
}
