package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
	"formcraft/internal/util"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// LocalImageStore writes uploaded images to a directory served as static
// files. Stored files are named by ULID; the client filename is only logged.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

// NewLocalImageStore creates the upload directory if needed.
func NewLocalImageStore(cfg config.UploadsConfig) (*LocalImageStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.Dir, err)
	}
	return &LocalImageStore{
		dir:       cfg.Dir,
		urlPrefix: "/" + strings.Trim(cfg.URLPrefix, "/"),
	}, nil
}

// Save sniffs the content type, rejects anything that is not an image and
// returns the public path of the stored file.
func (s *LocalImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", domain.NewInternalError("read upload", err)
	}
	if len(head) == 0 {
		return "", domain.NewValidationError("uploaded file is empty",
			[]domain.FieldError{domain.MissingField("image")})
	}

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", domain.NewValidationError("uploaded file is not a supported image",
			[]domain.FieldError{domain.InvalidFormat("image", fmt.Sprintf("unsupported content type %s", contentType))})
	}

	if err := ctx.Err(); err != nil {
		return "", domain.NewTimeoutError("upload cancelled", err)
	}

	name := util.NewULID() + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", domain.NewInternalError("create upload file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, br); err != nil {
		tmp.Close()
		return "", domain.NewInternalError("write upload file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", domain.NewInternalError("close upload file", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", domain.NewInternalError("store upload file", err)
	}

	logger.Get().Info("image stored",
		zap.String("filename", filename),
		zap.String("stored_as", name),
		zap.String("content_type", contentType))
	return path.Join(s.urlPrefix, name), nil
}
