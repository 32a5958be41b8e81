package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Dosada05/slot-arena/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	keys         []string
	contentTypes []string
	err          error
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	f.keys = append(f.keys, key)
	f.contentTypes = append(f.contentTypes, contentType)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(context.Context, string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func TestUploadImage(t *testing.T) {
	up := &fakeUploader{}
	svc := NewUploadService(up, discardLogger())

	res, err := svc.UploadImage(context.Background(), FolderPayments, "My Payment Proof.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.Len(t, up.keys, 1)
	assert.True(t, strings.HasPrefix(up.keys[0], "payments/my-payment-proof-"), up.keys[0])
	assert.True(t, strings.HasSuffix(up.keys[0], ".png"), up.keys[0])
	assert.Equal(t, "image/png", up.contentTypes[0])
	assert.Equal(t, "https://cdn.example.com/"+up.keys[0], res.Location)
}

func TestUploadImage_ContentTypeParams(t *testing.T) {
	up := &fakeUploader{}
	svc := NewUploadService(up, discardLogger())

	_, err := svc.UploadImage(context.Background(), FolderQRCodes, "qr.jpeg", "image/jpeg; charset=binary", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(up.keys[0], ".jpg"))
	assert.Equal(t, "image/jpeg", up.contentTypes[0])
}

func TestUploadImage_Rejects(t *testing.T) {
	svc := NewUploadService(&fakeUploader{}, discardLogger())
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, FolderPayments, "doc.pdf", "application/pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.UploadImage(ctx, FolderPayments, "a.png", "", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.UploadImage(ctx, FolderPayments, "a.png", "image/png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrFileRequired)

	_, err = svc.UploadImage(ctx, FolderPayments, "a.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrFileRequired)
}

func TestUploadImage_SizeLimit(t *testing.T) {
	up := &fakeUploader{}
	svc := NewUploadService(up, discardLogger())
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, FolderPayments, "a.png", "image/png", bytes.NewReader(make([]byte, MaxUploadSize)))
	assert.NoError(t, err)

	_, err = svc.UploadImage(ctx, FolderPayments, "a.png", "image/png", bytes.NewReader(make([]byte, MaxUploadSize+1)))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Len(t, up.keys, 1)
}

func TestUploadImage_BackendError(t *testing.T) {
	backend := errors.New("bucket unavailable")
	svc := NewUploadService(&fakeUploader{err: backend}, discardLogger())

	_, err := svc.UploadImage(context.Background(), FolderPayments, "a.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, backend)
}

func TestGetExtensionFromContentType(t *testing.T) {
	for ct, want := range map[string]string{
		"image/jpeg":    ".jpg",
		"image/jpg":     ".jpg",
		"image/webp":    ".webp",
		"image/gif":     ".gif",
		"image/svg+xml": ".svg",
	} {
		got, err := getExtensionFromContentType(ct)
		require.NoError(t, err, ct)
		assert.Equal(t, want, got, ct)
	}

	_, err := getExtensionFromContentType("text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestObjectKeyFallbackName(t *testing.T) {
	key := objectKey(FolderPayments, "???.png", ".png")
	assert.True(t, strings.HasPrefix(key, "payments/file-"), key)
}
