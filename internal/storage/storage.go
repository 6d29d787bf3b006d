// Package storage arquiva os relatórios exportados.
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// UploadInput representa um arquivo a ser arquivado.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o objeto persistido.
type UploadResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	ETag string `json:"etag,omitempty"`
}

// Uploader armazena blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// ExportKey monta a chave exports/AAAA/MM/DD/<uuid>-<arquivo>.
func ExportKey(now time.Time, filename string) string {
	now = now.UTC()
	return fmt.Sprintf("exports/%04d/%02d/%02d/%s-%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), path.Base(filename))
}
