package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kangsive/ai-chat-bot/internal/config"
)

// LocalStorage keeps attachment files under a base directory. The locator
// is the storage key relative to that directory.
type LocalStorage struct {
	basePath string
	log      zerolog.Logger
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.UploadDir)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("local storage initialized")

	return &LocalStorage{
		basePath: basePath,
		log:      logger,
	}, nil
}

func (l *LocalStorage) fullPath(locator string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(locator))
	// Keys come from our own id generator, but reject traversal anyway.
	if !strings.HasPrefix(filepath.Clean(full), filepath.Clean(l.basePath)) {
		return "", fmt.Errorf("locator %q escapes the upload directory", locator)
	}
	return full, nil
}

// Store writes the file and returns the key as its locator.
func (l *LocalStorage) Store(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	fullPath, err := l.fullPath(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Str("content_type", contentType).
		Msg("file stored")

	return key, nil
}

// Read returns the file's bytes.
func (l *LocalStorage) Read(ctx context.Context, locator string) ([]byte, error) {
	fullPath, err := l.fullPath(locator)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", locator)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes the file. Deleting an absent file is not an error.
func (l *LocalStorage) Delete(ctx context.Context, locator string) error {
	fullPath, err := l.fullPath(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Health checks that the upload directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
