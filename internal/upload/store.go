package upload

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// ImageStore persists validated images and returns the URL clients load
// them from.
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

// FileName builds issue-<unix ms>-<random>.<ext>.
func FileName(now time.Time, ext string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1e9))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 1e9)
	}
	return fmt.Sprintf("issue-%d-%d%s", now.UnixMilli(), n.Int64(), ext)
}
