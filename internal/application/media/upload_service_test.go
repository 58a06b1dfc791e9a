package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/imaging"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/destocard/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	require.NoError(t, filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return err
	}))
	return n
}

type uploadCounter struct {
	kinds []string
}

func (c *uploadCounter) MediaUploaded(kind string) { c.kinds = append(c.kinds, kind) }

type uploadFixture struct {
	db      *gorm.DB
	svc     *UploadService
	root    string
	metrics *uploadCounter
}

func newUploadFixture(t *testing.T, repo media.MediaRepository) *uploadFixture {
	t.Helper()
	db := persistencetest.NewDB(t)
	root := t.TempDir()
	store, err := storage.NewLocalObjectStorage(root, "/uploads", nil)
	require.NoError(t, err)
	if repo == nil {
		repo = persistence.NewGormMediaRepository(db)
	}

	f := &uploadFixture{db: db, root: root, metrics: &uploadCounter{}}
	f.svc = NewUploadService(UploadServiceConfig{
		MediaRepo:   repo,
		ProductRepo: persistence.NewGormProductRepository(db),
		Storage:     store,
		Limits:      media.Limits{MaxImageSize: 64 << 10, MaxVideoSize: 128 << 10},
		Resize:      imaging.Options{MaxWidth: 100, Quality: 80, MaxPixels: 50_000},
		Metrics:     f.metrics,
	})
	f.svc.now = func() time.Time { return time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestUploadService_Upload(t *testing.T) {
	f := newUploadFixture(t, nil)
	ctx := context.Background()
	seller := persistencetest.CreateUser(t, f.db, "pierre@example.com", "pierre")
	product := persistencetest.CreateProduct(t, f.db, seller.ID, "Onix", "3", 1)

	data := pngBytes(t, 200, 80)
	resp, err := f.svc.Upload(ctx, seller.ID, &product.ID, bytes.NewReader(data), "onix.png", int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, "image", resp.Kind)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, 100, resp.Width, "wide pictures are shrunk to the max width")
	assert.Equal(t, 40, resp.Height)
	assert.True(t, strings.HasPrefix(resp.URL, "/uploads/2026/10/"))
	assert.True(t, strings.HasSuffix(resp.URL, ".png"))
	assert.Equal(t, "onix.png", resp.OriginalName)
	assert.Equal(t, 1, countFiles(t, f.root))
	assert.Equal(t, []string{"image"}, f.metrics.kinds)

	list, err := f.svc.ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)
}

func TestUploadService_Rejections(t *testing.T) {
	f := newUploadFixture(t, nil)
	ctx := context.Background()
	seller := persistencetest.CreateUser(t, f.db, "pierre@example.com", "pierre")
	intruder := persistencetest.CreateUser(t, f.db, "jessie@example.com", "jessie")
	product := persistencetest.CreateProduct(t, f.db, seller.ID, "Onix", "3", 1)
	valid := pngBytes(t, 10, 10)
	var grey bytes.Buffer
	require.NoError(t, png.Encode(&grey, image.NewGray(image.Rect(0, 0, 300, 200))))
	huge := grey.Bytes()

	tests := []struct {
		name      string
		owner     uuid.UUID
		productID *uuid.UUID
		data      []byte
		declared  int64
		want      error
	}{
		{"empty", seller.ID, nil, nil, 0, ErrEmptyFile},
		{"text file", seller.ID, nil, []byte("<html>hello</html>"), 18, ErrInvalidFileType},
		{"declared too large", seller.ID, nil, valid, 1 << 30, ErrFileTooLarge},
		{"body too large", seller.ID, nil, bytes.Repeat([]byte{0}, 200<<10), 0, ErrFileTooLarge},
		{"foreign product", intruder.ID, &product.ID, valid, int64(len(valid)), ErrNotProductOwner},
		{"unknown product", seller.ID, ptr(uuid.New()), valid, int64(len(valid)), shared.ErrNotFound},
		{"too many pixels", seller.ID, nil, huge, int64(len(huge)), ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.owner, tt.productID, bytes.NewReader(tt.data), "file", tt.declared)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, countFiles(t, f.root))
}

type failingMediaRepo struct {
	media.MediaRepository
}

func (failingMediaRepo) Save(context.Context, *media.Media) error {
	return errors.New("database is locked")
}

func TestUploadService_PersistenceFailureRemovesObject(t *testing.T) {
	f := newUploadFixture(t, failingMediaRepo{})
	seller := persistencetest.CreateUser(t, f.db, "pierre@example.com", "pierre")
	data := pngBytes(t, 20, 20)

	_, err := f.svc.Upload(context.Background(), seller.ID, nil, bytes.NewReader(data), "a.png", int64(len(data)))
	require.Error(t, err)
	assert.Zero(t, countFiles(t, f.root))
	assert.Empty(t, f.metrics.kinds)
}

func TestUploadService_UploadDataURI(t *testing.T) {
	f := newUploadFixture(t, nil)
	ctx := context.Background()
	seller := persistencetest.CreateUser(t, f.db, "pierre@example.com", "pierre")
	encoded := base64.StdEncoding.EncodeToString(pngBytes(t, 32, 24))

	resp, err := f.svc.UploadDataURI(ctx, seller.ID, nil, "data:image/png;base64,"+encoded)
	require.NoError(t, err)
	assert.Equal(t, "webcam.png", resp.OriginalName)
	assert.Equal(t, 32, resp.Width)

	for _, uri := range []string{
		"image/png;base64," + encoded,
		"data:image/png," + encoded,
		"data:;base64," + encoded,
		"data:image/png;base64,***",
		"data:image/png;base64",
	} {
		_, err := f.svc.UploadDataURI(ctx, seller.ID, nil, uri)
		assert.ErrorIs(t, err, ErrInvalidDataURI, uri)
	}

	_, err = f.svc.UploadDataURI(ctx, seller.ID, nil, "data:application/pdf;base64,"+encoded)
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestUploadService_Delete(t *testing.T) {
	f := newUploadFixture(t, nil)
	ctx := context.Background()
	seller := persistencetest.CreateUser(t, f.db, "pierre@example.com", "pierre")
	other := persistencetest.CreateUser(t, f.db, "ondine@example.com", "ondine")
	product := persistencetest.CreateProduct(t, f.db, seller.ID, "Racaillou", "1", 1)

	upload := func() *MediaResponse {
		data := pngBytes(t, 8, 8)
		resp, err := f.svc.Upload(ctx, seller.ID, &product.ID, bytes.NewReader(data), "r.png", int64(len(data)))
		require.NoError(t, err)
		return resp
	}

	first := upload()
	assert.ErrorIs(t, f.svc.Delete(ctx, other.ID, false, first.ID), shared.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, seller.ID, false, first.ID))
	assert.Zero(t, countFiles(t, f.root))
	assert.ErrorIs(t, f.svc.Delete(ctx, seller.ID, false, first.ID), shared.ErrNotFound)

	upload()
	upload()
	require.NoError(t, f.svc.DeleteForProduct(ctx, product.ID))
	list, err := f.svc.ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, countFiles(t, f.root))
}

func ptr[T any](v T) *T { return &v }
