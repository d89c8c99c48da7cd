package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/types"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 10 << 20

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ImageStore persists image bytes and returns a public URL
type ImageStore interface {
	Store(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// S3PutObjectAPI is the part of the S3 client the image store needs
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackendImageStore forwards uploads to the recipe store's upload endpoint
type BackendImageStore struct {
	backend BackendStore
}

// NewBackendImageStore creates a new BackendImageStore
func NewBackendImageStore(backend BackendStore) *BackendImageStore {
	return &BackendImageStore{backend: backend}
}

// Store uploads data under filename
func (s *BackendImageStore) Store(ctx context.Context, filename, _ string, data []byte) (string, error) {
	return s.backend.UploadImage(ctx, filename, bytes.NewReader(data))
}

// S3ImageStore writes images to a bucket under recipe-images/
type S3ImageStore struct {
	client S3PutObjectAPI
	bucket string
}

// NewS3ImageStore creates a new S3ImageStore
func NewS3ImageStore(client S3PutObjectAPI, bucket string) *S3ImageStore {
	return &S3ImageStore{client: client, bucket: bucket}
}

// Store uploads data under a generated key
func (s *S3ImageStore) Store(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

// ImageService validates and stores recipe images
type ImageService struct {
	store ImageStore
	log   logrus.FieldLogger
}

// NewImageService creates a new ImageService
func NewImageService(store ImageStore, log logrus.FieldLogger) *ImageService {
	return &ImageService{store: store, log: log.WithField("component", "images")}
}

// Upload checks the file type and size, then stores the image
func (s *ImageService) Upload(ctx context.Context, caller types.Caller, filename string, r io.Reader) (string, error) {
	if caller.IsGuest() {
		return "", &types.ForbiddenError{Reason: "sign in to upload images"}
	}

	filename = filepath.Base(strings.TrimSpace(filename))
	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", &types.ValidationError{Fields: []string{"image"}}
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 || len(data) > MaxImageSize {
		return "", &types.ValidationError{Fields: []string{"image"}}
	}

	url, err := s.store.Store(ctx, filename, contentType, data)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": caller.UserID, "url": url}).Info("image uploaded")
	return url, nil
}
