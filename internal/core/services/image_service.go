package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
)

const (
	MaxImagesPerUpload = 5
	imageKeyPrefix     = "products/"
	keyCharset         = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type imageService struct {
	BaseService
	storage gateways.ObjectStorage
}

func NewImageService(storage gateways.ObjectStorage) portssvc.ImageSvcFacade {
	return &imageService{storage: storage}
}

// UploadImages checks every file before uploading any, then uploads them one
// at a time. The first failure aborts the request.
func (s *imageService) UploadImages(ctx context.Context, files []domain.ImageFile) ([]domain.UploadedImage, error) {
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("At least one image is required")
	}
	if len(files) > MaxImagesPerUpload {
		return nil, apperrors.NewValidationError(fmt.Sprintf("You can upload up to %d images", MaxImagesPerUpload))
	}

	contentTypes := make([]string, len(files))
	for i, f := range files {
		mt := mimetype.Detect(f.Data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s is not an image", f.Name))
		}
		contentTypes[i] = mt.String()
	}

	uploaded := make([]domain.UploadedImage, 0, len(files))
	for i, f := range files {
		img, err := s.uploadOne(ctx, f, contentTypes[i])
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, *img)
	}
	return uploaded, nil
}

func (s *imageService) uploadOne(ctx context.Context, f domain.ImageFile, contentType string) (*domain.UploadedImage, error) {
	id, err := gonanoid.Generate(keyCharset, 12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate object key: %w", err)
	}
	key := imageKeyPrefix + id + "-" + sanitizeFileName(f.Name)
	logger := s.GetLogger(ctx).With(slog.String("file", f.Name), slog.String("key", key))

	progress := func(done, total int64) {
		logger.Debug("Upload progress", slog.Int64("uploaded", done), slog.Int64("total", total))
	}

	ref, err := s.storage.Upload(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data)), contentType, progress)
	if err != nil {
		logger.Error("Image upload failed", slog.String("error", err.Error()))
		return nil, apperrors.NewDeliveryError(fmt.Sprintf("Failed to upload %s", f.Name), err)
	}

	url, err := s.storage.ResolveDownloadURL(ctx, ref)
	if err != nil {
		logger.Error("Failed to resolve download URL", slog.String("error", err.Error()))
		return nil, apperrors.NewDeliveryError(fmt.Sprintf("Failed to upload %s", f.Name), err)
	}

	logger.Info("Image uploaded")
	return &domain.UploadedImage{
		Name:        f.Name,
		Reference:   ref,
		URL:         url,
		ContentType: contentType,
	}, nil
}

// sanitizeFileName keeps the base name, lowercased, with anything outside
// [a-z0-9._-] replaced by '-'.
func sanitizeFileName(name string) string {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), ".-")
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	if out == "" {
		return "image"
	}
	return out
}
