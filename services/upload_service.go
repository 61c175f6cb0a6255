package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxImageBytes     = 5 << 20
	maxImagesPerCall  = 10
	PaymentProofDir   = "payment-proofs"
	UploadRoutePrefix = "/api/uploads/"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader returns nil when cld is nil so callers can treat uploads as disabled.
func NewCloudinaryUploader(cld *cloudinary.Cloudinary) ImageUploader {
	if cld == nil {
		return nil
	}
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

var errUploadsDisabled = NewAppError(http.StatusServiceUnavailable, "image upload is not configured")

// readImage loads an uploaded file after checking its size and sniffed type.
func readImage(fh *multipart.FileHeader, maxBytes int64, allowed ...string) ([]byte, *mimetype.MIME, error) {
	if fh.Size > maxBytes {
		return nil, nil, BadRequest("file %s must be at most %s", fh.Filename, humanBytes(maxBytes))
	}
	src, err := fh.Open()
	if err != nil {
		return nil, nil, BadRequest("cannot open file %s", fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, nil, BadRequest("file %s must be at most %s", fh.Filename, humanBytes(maxBytes))
	}

	mtype := mimetype.Detect(data)
	if len(allowed) == 0 {
		if !strings.HasPrefix(mtype.String(), "image/") {
			return nil, nil, BadRequest("file %s is not an image", fh.Filename)
		}
		return data, mtype, nil
	}
	for _, a := range allowed {
		if mtype.Is(a) {
			return data, mtype, nil
		}
	}
	return nil, nil, BadRequest("file %s must be one of %s", fh.Filename, strings.Join(allowed, ", "))
}

func humanBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// UploadImages validates and pushes every file to the image host.
func UploadImages(ctx context.Context, up ImageUploader, files []*multipart.FileHeader, folder string) ([]string, error) {
	if up == nil {
		return nil, errUploadsDisabled
	}
	if len(files) == 0 {
		return nil, BadRequest("no files uploaded")
	}
	if len(files) > maxImagesPerCall {
		return nil, BadRequest("at most %d files per upload", maxImagesPerCall)
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		data, _, err := readImage(fh, MaxImageBytes)
		if err != nil {
			return nil, err
		}
		url, err := up.Upload(ctx, bytes.NewReader(data), folder)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// LocalStorage keeps payment proofs on disk below Dir.
type LocalStorage struct {
	Dir      string
	MaxBytes int64
}

func NewLocalStorage(dir string, maxBytes int64) *LocalStorage {
	return &LocalStorage{Dir: dir, MaxBytes: maxBytes}
}

// SavePaymentProof stores a jpg or png and returns the URL it is served under.
func (s *LocalStorage) SavePaymentProof(fh *multipart.FileHeader) (string, error) {
	data, mtype, err := readImage(fh, s.MaxBytes, "image/jpeg", "image/png")
	if err != nil {
		return "", err
	}
	suffix, err := newRandomToken()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), suffix[:12], mtype.Extension())

	dir := filepath.Join(s.Dir, PaymentProofDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write payment proof: %w", err)
	}
	return UploadRoutePrefix + path.Join(PaymentProofDir, name), nil
}

// Resolve maps a request path to a file below Dir, refusing anything that escapes it.
func (s *LocalStorage) Resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(rel, "\\", "/")), "/")
	if rel == "" || rel == "." {
		return "", NotFound("file not found")
	}

	base, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", err
	}
	full := filepath.Join(base, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", BadRequest("invalid file path")
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", NotFound("file not found")
	}
	return full, nil
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

// ContentType looks the extension up first and sniffs the file otherwise.
func ContentType(file string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(file))]; ok {
		return ct
	}
	mtype, err := mimetype.DetectFile(file)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
