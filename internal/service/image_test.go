package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/mocks"
	"github.com/pageza/recipehub/backend/internal/types"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestUpload_BackendStore(t *testing.T) {
	backend := new(mocks.MockBackendStore)
	backend.On("UploadImage", mock.Anything, "stew.png", mock.Anything).
		Return("http://localhost/MyRecipeUploads/stew.png", nil)
	svc := NewImageService(NewBackendImageStore(backend), logging.Discard())

	url, err := svc.Upload(context.Background(), ann, "../../stew.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/MyRecipeUploads/stew.png", url)
}

func TestUpload_S3Store(t *testing.T) {
	fake := &fakeS3{}
	svc := NewImageService(NewS3ImageStore(fake, "recipes"), logging.Discard())

	url, err := svc.Upload(context.Background(), ann, "Stew.JPG", bytes.NewReader([]byte("jpegdata")))
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	assert.Equal(t, "recipes", *fake.input.Bucket)
	assert.Equal(t, "image/jpeg", *fake.input.ContentType)
	assert.True(t, strings.HasPrefix(*fake.input.Key, "recipe-images/"))
	assert.True(t, strings.HasSuffix(*fake.input.Key, ".jpg"))
	assert.Equal(t, "jpegdata", string(fake.body))
	assert.Equal(t, "https://recipes.s3.amazonaws.com/"+*fake.input.Key, url)
}

func TestUpload_Rejects(t *testing.T) {
	svc := NewImageService(NewS3ImageStore(&fakeS3{}, "recipes"), logging.Discard())

	_, err := svc.Upload(context.Background(), types.Guest, "a.png", strings.NewReader("x"))
	var forbidden *types.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	var invalid *types.ValidationError
	_, err = svc.Upload(context.Background(), ann, "a.exe", strings.NewReader("x"))
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.Upload(context.Background(), ann, "a.png", strings.NewReader(""))
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.Upload(context.Background(), ann, "a.png", io.LimitReader(zeros{}, MaxImageSize+1))
	assert.ErrorAs(t, err, &invalid)
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
