package media

import (
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind distinguishes pictures from clips
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Default upload limits
const (
	DefaultMaxImageSize int64 = 5 * 1024 * 1024
	DefaultMaxVideoSize int64 = 50 * 1024 * 1024
)

// allowedTypes maps accepted MIME types to their kind and file extension
var allowedTypes = map[string]struct {
	kind Kind
	ext  string
}{
	"image/jpeg": {KindImage, ".jpg"},
	"image/png":  {KindImage, ".png"},
	"image/webp": {KindImage, ".webp"},
	"image/gif":  {KindImage, ".gif"},
	"video/mp4":  {KindVideo, ".mp4"},
	"video/webm": {KindVideo, ".webm"},
}

// KindFor returns the kind and canonical extension of an accepted MIME type
func KindFor(contentType string) (Kind, string, bool) {
	t, ok := allowedTypes[normalizeContentType(contentType)]
	return t.kind, t.ext, ok
}

// Limits bounds upload sizes per kind
type Limits struct {
	MaxImageSize int64
	MaxVideoSize int64
}

// DefaultLimits returns the stock limits
func DefaultLimits() Limits {
	return Limits{MaxImageSize: DefaultMaxImageSize, MaxVideoSize: DefaultMaxVideoSize}
}

// Max returns the size limit for kind
func (l Limits) Max(kind Kind) int64 {
	if kind == KindVideo {
		return l.MaxVideoSize
	}
	return l.MaxImageSize
}

// Media is an uploaded picture or clip
type Media struct {
	shared.BaseAggregateRoot
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID    *uuid.UUID `gorm:"type:uuid;index"`
	Kind         Kind       `gorm:"type:varchar(10);not null"`
	FileName     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	OriginalName string     `gorm:"type:varchar(255)"`
	ContentType  string     `gorm:"type:varchar(50);not null"`
	Size         int64      `gorm:"not null"`
	StorageKey   string     `gorm:"type:varchar(255);not null"`
	URL          string     `gorm:"type:varchar(500);not null"`
	Width        int        `gorm:"not null;default:0"`
	Height       int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Media) TableName() string {
	return "media"
}

// UploadInfo describes a file that was just stored
type UploadInfo struct {
	FileName     string
	OriginalName string
	ContentType  string
	Size         int64
	StorageKey   string
	URL          string
	Width        int
	Height       int
}

// NewMedia validates an upload against limits and builds the record
func NewMedia(ownerID uuid.UUID, productID *uuid.UUID, info UploadInfo, limits Limits) (*Media, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Le propriétaire du fichier est obligatoire")
	}
	kind, err := ValidateUpload(info.ContentType, info.Size, limits)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(info.FileName) == "" || strings.TrimSpace(info.StorageKey) == "" {
		return nil, shared.NewDomainError("INVALID_FILE", "Le fichier est invalide")
	}
	original := info.OriginalName
	if len(original) > 255 {
		original = original[:255]
	}
	return &Media{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		ProductID:         productID,
		Kind:              kind,
		FileName:          info.FileName,
		OriginalName:      original,
		ContentType:       normalizeContentType(info.ContentType),
		Size:              info.Size,
		StorageKey:        info.StorageKey,
		URL:               info.URL,
		Width:             info.Width,
		Height:            info.Height,
	}, nil
}

// ValidateUpload checks the type and size of an upload and returns its kind
func ValidateUpload(contentType string, size int64, limits Limits) (Kind, error) {
	kind, _, ok := KindFor(contentType)
	if !ok {
		return "", shared.NewDomainError("INVALID_FILE_TYPE", "Type de fichier non autorisé")
	}
	if size <= 0 {
		return "", shared.NewDomainError("EMPTY_FILE", "Le fichier est vide")
	}
	if size > limits.Max(kind) {
		if kind == KindVideo {
			return "", shared.NewDomainError("FILE_TOO_LARGE", "La vidéo est trop volumineuse")
		}
		return "", shared.NewDomainError("FILE_TOO_LARGE", "L'image est trop volumineuse")
	}
	return kind, nil
}

// AttachTo links the media to a product
func (m *Media) AttachTo(productID uuid.UUID) {
	m.ProductID = &productID
	m.Touch()
}

// IsOwnedBy reports whether userID uploaded the media
func (m *Media) IsOwnedBy(userID uuid.UUID) bool {
	return m.OwnerID == userID
}

// IsImage reports whether the media is a picture
func (m *Media) IsImage() bool {
	return m.Kind == KindImage
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	return ct
}
