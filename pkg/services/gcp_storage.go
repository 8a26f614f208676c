package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrStorageUnavailable = errors.New("image uploads are not configured")
	ErrImageTooLarge      = errors.New("image must be 5MB or smaller")
	ErrImageType          = errors.New("image must be JPEG, PNG or WebP")
)

// MaxImageSize bounds multipart image uploads
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageStore uploads public images
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, folder, fileName, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Images is nil until InitGCPStorage succeeds
var Images ImageStore

type gcsImageStore struct {
	client *storage.Client
	bucket string
}

// InitGCPStorage initializes the GCP Storage client
func InitGCPStorage(ctx context.Context, bucketName string) error {
	if bucketName == "" {
		log.Warn().Msg("GCP_BUCKET_NAME not set, image uploads disabled")
		return nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create GCP storage client: %w", err)
	}

	Images = &gcsImageStore{client: client, bucket: bucketName}
	return nil
}

// ObjectName prefixes fileName with a random id under folder
func ObjectName(folder, fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	return path.Join(folder, uuid.NewString()+"-"+base)
}

func (s *gcsImageStore) publicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object)
}

// Upload streams r to the bucket and returns the public URL
func (s *gcsImageStore) Upload(ctx context.Context, r io.Reader, folder, fileName, contentType string) (string, error) {
	object := ObjectName(folder, fileName)
	writer := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if contentType == "" {
		contentType = "image/jpeg"
	}
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", fmt.Errorf("GCS upload failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("GCS upload finalization failed: %w", err)
	}

	return s.publicURL(object), nil
}

// Delete removes an object previously returned by Upload. Missing objects are ignored.
func (s *gcsImageStore) Delete(ctx context.Context, url string) error {
	prefix := s.publicURL("")
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	err := s.client.Bucket(s.bucket).Object(strings.TrimPrefix(url, prefix)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

// UploadMultipartImage checks size and type of an uploaded file and stores it
func UploadMultipartImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if Images == nil {
		return "", ErrStorageUnavailable
	}
	if file.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return "", ErrImageType
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return Images.Upload(ctx, f, folder, file.Filename, contentType)
}

// CloseStorage releases the storage client
func CloseStorage() {
	if s, ok := Images.(*gcsImageStore); ok {
		s.client.Close()
	}
}
