package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/auth"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/storage"
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ImageService stores recipe images on a storage disk.
type ImageService struct {
	disk storage.Disk
	now  func() time.Time
}

func NewImageService(disk storage.Disk) *ImageService {
	return &ImageService{disk: disk, now: time.Now}
}

// Upload stores r as "<unix>_<sanitized filename>" and returns its URL.
func (s *ImageService) Upload(ctx context.Context, p auth.Principal, filename string, r io.Reader) (string, error) {
	if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
		return "", err
	}
	if strings.TrimSpace(filename) == "" {
		return "", apperr.Validation("No selected file")
	}

	safe := SanitizeFilename(filename)
	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(safe))]
	if !ok || strings.TrimSuffix(safe, filepath.Ext(safe)) == "" {
		return "", apperr.Validation("Invalid file type")
	}

	name := fmt.Sprintf("%d_%s", s.now().Unix(), safe)
	url, err := s.disk.Put(ctx, name, r, contentType)
	if err != nil {
		return "", apperr.Infrastructure("Failed to upload file", err)
	}

	logger.WithCtx(ctx).Info("image uploaded", "name", name, "by", p.UserID)
	return url, nil
}

// Open returns a stored image and its content type.
func (s *ImageService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	rc, err := s.disk.Open(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", apperr.NotFound("File not found")
	}
	if err != nil {
		return nil, "", apperr.Infrastructure("open image", err)
	}
	contentType := imageTypes[strings.ToLower(filepath.Ext(name))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, contentType, nil
}

// SanitizeFilename keeps the last path element and replaces everything
// outside [A-Za-z0-9_.-] with "_". Leading dots and underscores are dropped.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(name, "._")
}
