// Package media stores product pictures and videos uploaded by sellers.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload errors
var (
	ErrInvalidFileType = shared.NewDomainError("INVALID_FILE_TYPE", "Type de fichier non autorisé")
	ErrEmptyFile       = shared.NewDomainError("EMPTY_FILE", "Le fichier est vide")
	ErrFileTooLarge    = shared.NewDomainError("FILE_TOO_LARGE", "Le fichier est trop volumineux")
	ErrInvalidDataURI  = shared.NewDomainError(shared.ErrInvalidInput.Code, "Données d'image invalides")
	ErrInvalidImage    = shared.NewDomainError("INVALID_FILE", "L'image est illisible")
	ErrNotProductOwner = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'êtes pas le vendeur de ce produit")
	ErrMediaForbidden  = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'avez pas accès à ce fichier")
)

const webcamFileName = "webcam"

// Metrics counts stored uploads
type Metrics interface {
	MediaUploaded(kind string)
}

type noopMetrics struct{}

func (noopMetrics) MediaUploaded(string) {}

// UploadService validates, resizes and stores uploads
type UploadService struct {
	mediaRepo   media.MediaRepository
	productRepo marketplace.ProductRepository
	storage     media.ObjectStorage
	limits      media.Limits
	resize      imaging.Options
	metrics     Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// UploadServiceConfig lists the dependencies of UploadService
type UploadServiceConfig struct {
	MediaRepo   media.MediaRepository
	ProductRepo marketplace.ProductRepository
	Storage     media.ObjectStorage
	Limits      media.Limits
	Resize      imaging.Options
	Metrics     Metrics
	Logger      *zap.Logger
}

// NewUploadService creates an upload service
func NewUploadService(cfg UploadServiceConfig) *UploadService {
	s := &UploadService{
		mediaRepo:   cfg.MediaRepo,
		productRepo: cfg.ProductRepo,
		storage:     cfg.Storage,
		limits:      cfg.Limits,
		resize:      cfg.Resize,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		now:         time.Now,
	}
	if s.limits.MaxImageSize <= 0 || s.limits.MaxVideoSize <= 0 {
		s.limits = media.DefaultLimits()
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Upload stores one file for ownerID, attached to productID when given.
// The content type is sniffed from the bytes; declaredSize only short-cuts
// obviously oversized requests.
func (s *UploadService) Upload(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID, r io.Reader, originalName string, declaredSize int64) (*MediaResponse, error) {
	maxSize := max(s.limits.MaxImageSize, s.limits.MaxVideoSize)
	if declaredSize > maxSize {
		return nil, ErrFileTooLarge
	}
	if err := s.checkProductOwner(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}

	contentType := mimetype.Detect(data).String()
	kind, ext, ok := media.KindFor(contentType)
	if !ok {
		s.logger.Debug("Rejected upload", zap.String("detected", contentType), zap.String("name", originalName))
		return nil, ErrInvalidFileType
	}
	contentType = mimeBase(contentType)
	if _, err := media.ValidateUpload(contentType, int64(len(data)), s.limits); err != nil {
		return nil, err
	}

	var width, height int
	if kind == media.KindImage {
		res, err := imaging.Process(data, contentType, s.resize)
		if err != nil {
			s.logger.Debug("Unreadable image", zap.String("name", originalName), zap.Error(err))
			return nil, ErrInvalidImage
		}
		data, width, height = res.Data, res.Width, res.Height
	}

	fileName := uuid.NewString() + ext
	key := media.StorageKey(s.now(), fileName)
	url, err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		s.logger.Error("Failed to store upload", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	m, err := media.NewMedia(ownerID, productID, media.UploadInfo{
		FileName:     fileName,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         int64(len(data)),
		StorageKey:   key,
		URL:          url,
		Width:        width,
		Height:       height,
	}, s.limits)
	if err == nil {
		err = s.mediaRepo.Save(ctx, m)
	}
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphan upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.metrics.MediaUploaded(string(kind))
	s.logger.Info("Media uploaded",
		zap.String("media_id", m.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("content_type", contentType),
		zap.Int64("size", m.Size))

	resp := ToMediaResponse(m)
	return &resp, nil
}

// UploadDataURI stores a webcam capture sent as data:<mime>;base64,<payload>
func (s *UploadService) UploadDataURI(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID, dataURI string) (*MediaResponse, error) {
	declared, payload, err := parseDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	_, ext, ok := media.KindFor(declared)
	if !ok {
		return nil, ErrInvalidFileType
	}
	return s.Upload(ctx, ownerID, productID, bytes.NewReader(payload), webcamFileName+ext, int64(len(payload)))
}

// Delete removes a file owned by ownerID, or any file for an admin
func (s *UploadService) Delete(ctx context.Context, ownerID uuid.UUID, isAdmin bool, mediaID uuid.UUID) error {
	m, err := s.mediaRepo.FindByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if !isAdmin && !m.IsOwnedBy(ownerID) {
		return ErrMediaForbidden
	}
	return s.remove(ctx, m)
}

// DeleteForProduct removes every file of a product
func (s *UploadService) DeleteForProduct(ctx context.Context, productID uuid.UUID) error {
	list, err := s.mediaRepo.FindByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for i := range list {
		if err := s.remove(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListForProduct returns the files of a product, oldest first
func (s *UploadService) ListForProduct(ctx context.Context, productID uuid.UUID) ([]MediaResponse, error) {
	list, err := s.mediaRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToMediaResponses(list), nil
}

func (s *UploadService) remove(ctx context.Context, m *media.Media) error {
	if err := s.mediaRepo.Delete(ctx, m.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, m.StorageKey); err != nil {
		s.logger.Warn("Failed to delete stored object",
			zap.String("media_id", m.ID.String()),
			zap.String("key", m.StorageKey),
			zap.Error(err))
	}
	return nil
}

func (s *UploadService) checkProductOwner(ctx context.Context, ownerID uuid.UUID, productID *uuid.UUID) error {
	if productID == nil {
		return nil
	}
	p, err := s.productRepo.FindByID(ctx, *productID)
	if err != nil {
		return err
	}
	if !p.IsOwnedBy(ownerID) {
		return ErrNotProductOwner
	}
	return nil
}

// parseDataURI splits data:<mime>;base64,<payload>
func parseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok || mimeType == "" {
		return "", nil, ErrInvalidDataURI
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidDataURI, err)
	}
	if len(payload) == 0 {
		return "", nil, ErrEmptyFile
	}
	return mimeType, payload, nil
}

func mimeBase(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		return strings.TrimSpace(ct[:i])
	}
	return ct
}
