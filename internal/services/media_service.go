package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"courtside/internal/domain"
	applog "courtside/internal/log"
)

var ErrUnsupportedMedia = errors.New("no valid files uploaded; supported: JPEG, PNG, WebP, GIF, MP4, WebM, MOV")

var mediaTypes = map[string]domain.MediaType{
	"image/jpeg":      domain.MediaImage,
	"image/png":       domain.MediaImage,
	"image/webp":      domain.MediaImage,
	"image/gif":       domain.MediaImage,
	"video/mp4":       domain.MediaVideo,
	"video/webm":      domain.MediaVideo,
	"video/quicktime": domain.MediaVideo,
}

// MediaService stores uploaded product media under Dir, served from URLPrefix.
type MediaService struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewMediaService(dir, urlPrefix string) *MediaService {
	return &MediaService{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), now: time.Now}
}

// SaveAll stores every supported file and skips the rest. It fails with
// ErrUnsupportedMedia when nothing was stored.
func (s *MediaService) SaveAll(files []*multipart.FileHeader) ([]domain.Media, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	out := make([]domain.Media, 0, len(files))
	for _, fh := range files {
		kind, ok := mediaTypes[strings.ToLower(fh.Header.Get("Content-Type"))]
		if !ok {
			applog.Debug(nil, "media.skip", map[string]any{"file": fh.Filename, "type": fh.Header.Get("Content-Type")})
			continue
		}
		name := s.fileName(fh.Filename, kind)
		if err := s.store(fh, filepath.Join(s.Dir, name)); err != nil {
			return out, fmt.Errorf("store %s: %w", fh.Filename, err)
		}
		out = append(out, domain.Media{Type: kind, URL: s.URLPrefix + "/" + name})
	}
	if len(out) == 0 {
		return nil, ErrUnsupportedMedia
	}
	return out, nil
}

// fileName is product_<unixmilli>_<rand6>.<ext>. The extension comes from the client name
// when it is plain alphanumeric.
func (s *MediaService) fileName(original string, kind domain.MediaType) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if !plainExt(ext) {
		ext = "jpg"
		if kind == domain.MediaVideo {
			ext = "mp4"
		}
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("product_%d_%s.%s", s.now().UnixMilli(), random, ext)
}

func plainExt(ext string) bool {
	if ext == "" || len(ext) > 5 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func (s *MediaService) store(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
