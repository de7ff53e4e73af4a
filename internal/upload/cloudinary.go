package upload

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/frahmantamala/campus-fixit/internal"
)

// CloudinaryStore keeps images in Cloudinary and hands back the secure URL.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(cfg internal.CloudinaryConfig) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	folder := cfg.Folder
	if folder == "" {
		folder = "campus-fixit"
	}
	return &CloudinaryStore{cld: cld, folder: folder, now: time.Now}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, img *Image) (string, error) {
	name := FileName(s.now(), img.Ext)

	resp, err := s.cld.Upload.Upload(ctx, img.File, uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       strings.TrimSuffix(name, img.Ext),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
		ResourceType:   "image",
	})
	if err != nil {
		return "", internal.NewInternalError("failed to upload image", err)
	}
	if resp.Error.Message != "" {
		return "", internal.NewInternalError("failed to upload image", fmt.Errorf("cloudinary: %s", resp.Error.Message))
	}
	if resp.SecureURL == "" {
		return "", internal.NewInternalError("failed to upload image", fmt.Errorf("cloudinary returned an empty secure url"))
	}
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, fileURL string) error {
	publicID := publicIDFromURL(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy returned %q", resp.Result)
	}
	return nil
}

// publicIDFromURL turns .../image/upload/v123/folder/name.jpg into folder/name.
func publicIDFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx == -1 || idx+1 >= len(parts) {
		return ""
	}

	rest := parts[idx+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}
	joined := strings.Join(rest, "/")
	return strings.TrimSuffix(joined, path.Ext(joined))
}

func isVersion(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
