package storage

import (
	"context"

	"github.com/japama/watercontract/internal/apperr"
)

// ErrNotConfigured é retornado quando nenhum backend de arquivo foi configurado.
var ErrNotConfigured = apperr.Dependency("STORAGE_NOT_CONFIGURED", "Export archive is not configured")

// NoopUploader é usado quando STORAGE_PROVIDER=noop.
type NoopUploader struct{}

// Upload sempre falha com ErrNotConfigured.
func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}
