package media

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ObjectStorage stores uploaded files
type ObjectStorage interface {
	// Put writes r under key and returns the public URL of the object
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageKey returns the object key of fileName uploaded at t: yyyy/mm/fileName
func StorageKey(t time.Time, fileName string) string {
	return fmt.Sprintf("%04d/%02d/%s", t.Year(), int(t.Month()), fileName)
}
