package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/campus-fixit/internal"
)

// LocalStore writes images to a directory that the HTTP server exposes
// under publicPath.
type LocalStore struct {
	dir        string
	baseURL    string
	publicPath string
	now        func() time.Time
}

func NewLocalStore(dir, baseURL, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		dir:        dir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicPath: "/" + strings.Trim(publicPath, "/"),
		now:        time.Now,
	}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) PublicPath() string {
	return s.publicPath
}

func (s *LocalStore) Save(ctx context.Context, img *Image) (string, error) {
	name := FileName(s.now(), img.Ext)

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", internal.NewInternalError("failed to store image", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, img.File); err != nil {
		os.Remove(dst.Name())
		return "", internal.NewInternalError("failed to store image", err)
	}

	return s.baseURL + path.Join(s.publicPath, name), nil
}

// Delete removes a file previously returned by Save. Unknown URLs are ignored.
func (s *LocalStore) Delete(ctx context.Context, fileURL string) error {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil
	}
	if !strings.HasPrefix(u.Path, s.publicPath+"/") {
		return nil
	}
	name := path.Base(u.Path)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
