package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
)

// DataURLUploader используется в разработке, когда R2 не настроен:
// файл возвращается как data: URL и держится в памяти процесса.
type DataURLUploader struct {
	mu      sync.RWMutex
	objects map[string]string
}

func NewDataURLUploader() *DataURLUploader {
	return &DataURLUploader{objects: make(map[string]string)}
}

func (u *DataURLUploader) Upload(_ context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read upload (key: %s): %w", key, err)
	}
	location := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(buf.Bytes()))

	u.mu.Lock()
	u.objects[key] = location
	u.mu.Unlock()

	return &UploadResult{Key: key, Location: location}, nil
}

func (u *DataURLUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	delete(u.objects, key)
	u.mu.Unlock()
	return nil
}

func (u *DataURLUploader) GetPublicURL(key string) string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.objects[key]
}
