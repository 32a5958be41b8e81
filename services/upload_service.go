package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Dosada05/slot-arena/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const MaxUploadSize = 5 << 20

// UploadFolder — префикс ключа объекта в хранилище.
type UploadFolder string

const (
	FolderPayments UploadFolder = "payments"
	FolderQRCodes  UploadFolder = "qr-codes"
)

type UploadService interface {
	UploadImage(ctx context.Context, folder UploadFolder, filename, contentType string, reader io.Reader) (*storage.UploadResult, error)
}

type uploadService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUploadService(uploader storage.FileUploader, logger *slog.Logger) UploadService {
	return &uploadService{uploader: uploader, logger: logger}
}

func (s *uploadService) UploadImage(ctx context.Context, folder UploadFolder, filename, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if reader == nil {
		return nil, ErrFileRequired
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrUnsupportedFileType
	}
	ext, err := getExtensionFromContentType(mediaType)
	if err != nil {
		return nil, err
	}

	// читаем на байт больше лимита, чтобы отличить "ровно 5MB" от "больше"
	data, err := io.ReadAll(io.LimitReader(reader, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	key := objectKey(folder, filename, ext)
	result, err := s.uploader.Upload(ctx, key, mediaType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	s.logger.InfoContext(ctx, "image uploaded", slog.String("key", key), slog.Int("size", len(data)))
	return result, nil
}

// objectKey builds <folder>/<slug>-<uuid><ext>.
func objectKey(folder UploadFolder, filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := slug.Make(base)
	if name == "" || name == "." {
		name = "file"
	}
	return fmt.Sprintf("%s/%s-%s%s", folder, name, uuid.NewString(), ext)
}
