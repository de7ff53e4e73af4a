package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/campus-fixit/internal"
)

const (
	DefaultMaxSize = 5 << 20
	// formOverhead is the room left for text fields next to the file.
	formOverhead = 1 << 20
)

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var (
	ErrInvalidFileType  = internal.NewValidationError("Invalid file type. Only JPEG, PNG, and GIF images are allowed.", internal.ErrCodeInvalidUpload)
	ErrInvalidExtension = internal.NewValidationError("Invalid file extension. Only .jpg, .jpeg, .png, and .gif are allowed.", internal.ErrCodeInvalidUpload)
)

func ErrFileTooLarge(maxSize int64) *internal.AppError {
	return internal.NewValidationError(
		fmt.Sprintf("File too large. Maximum size is %dMB.", maxSize>>20),
		internal.ErrCodeInvalidUpload,
	)
}

// Image is a validated upload waiting to be stored. Close releases the
// multipart temp file.
type Image struct {
	OriginalName string
	ContentType  string
	Ext          string
	Size         int64
	File         multipart.File
}

func (i *Image) Close() error {
	if i == nil || i.File == nil {
		return nil
	}
	return i.File.Close()
}

// IsMultipart reports whether the request carries a multipart form.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// ParseForm reads a multipart request and validates the optional image in
// field. It returns a nil image when no file was sent. Oversized bodies and
// disallowed files fail before any caller logic runs.
func ParseForm(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (*Image, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			return nil, ErrFileTooLarge(maxSize)
		}
		return nil, internal.NewValidationError("Invalid multipart form", internal.ErrCodeInvalidUpload).WithCause(err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, internal.NewValidationError("Invalid multipart form", internal.ErrCodeInvalidUpload).WithCause(err)
	}

	img, err := validate(file, header, maxSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	return img, nil
}

func validate(file multipart.File, header *multipart.FileHeader, maxSize int64) (*Image, error) {
	if header.Size > maxSize {
		return nil, ErrFileTooLarge(maxSize)
	}

	contentType := declaredType(header)
	if contentType == "" || contentType == "application/octet-stream" {
		sniffed, err := sniff(file)
		if err != nil {
			return nil, err
		}
		contentType = sniffed
	}
	if !allowedMIMETypes[contentType] {
		return nil, ErrInvalidFileType
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, ErrInvalidExtension
	}

	return &Image{
		OriginalName: header.Filename,
		ContentType:  contentType,
		Ext:          ext,
		Size:         header.Size,
		File:         file,
	}, nil
}

func declaredType(header *multipart.FileHeader) string {
	mt, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func sniff(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", internal.NewInternalError("failed to read upload", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", internal.NewInternalError("failed to rewind upload", err)
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	return mt, nil
}
