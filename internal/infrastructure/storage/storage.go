// Package storage provides the file-storage backends. Locators returned by
// Store are opaque to callers and only meaningful back here.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/config"
)

// Backend stores, reads and deletes attachment files.
type Backend interface {
	Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Read(ctx context.Context, locator string) ([]byte, error)
	Delete(ctx context.Context, locator string) error
	Health(ctx context.Context) error
}

// New selects the backend named by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStorage(cfg, log)
	case "s3":
		return NewS3Storage(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
