package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/metrics"
	"site-admin-backend/internal/models"
	"site-admin-backend/internal/saga"
)

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	FileID  string `json:"fileId"`
	FileURL string `json:"fileUrl"`
}

// ImageService keeps blobs in object storage and their StoredFile /
// StoredFileDetail rows in step.
type ImageService struct {
	files    FileStore
	storage  ObjectStorage
	folder   string
	maxBytes int64
	now      func() time.Time
	log      *logger.Logger
}

func NewImageService(files FileStore, storage ObjectStorage, folder string, maxBytes int64, log *logger.Logger) *ImageService {
	return &ImageService{
		files:    files,
		storage:  storage,
		folder:   strings.Trim(folder, "/"),
		maxBytes: maxBytes,
		now:      time.Now,
		log:      logger.OrNop(log).With("service", "ImageService"),
	}
}

// WithClock replaces the time source used for storage paths. Tests only.
func (s *ImageService) WithClock(now func() time.Time) *ImageService {
	s.now = now
	return s
}

// UploadImage validates the blob locally, uploads it, then writes the file
// and detail rows. A failed detail insert removes the file row again; the
// blob itself stays in storage in both metadata failure cases.
func (s *ImageService) UploadImage(ctx context.Context, in ImageUpload) (res *UploadResult, err error) {
	const op = "UploadImage"
	defer recoverInto(op, s.log, &err)

	contentType, err := s.checkUpload(in)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation(op, err)
	}
	storagePath := s.storagePath(in.Filename, contentType)

	var (
		publicURL string
		file      *models.StoredFile
	)
	run := saga.New("upload_image", s.log).
		Step("upload_blob", func(ctx context.Context) error {
			if err := s.storage.Upload(ctx, storagePath, contentType, in.Data); err != nil {
				return err
			}
			publicURL = s.storage.PublicURL(storagePath)
			return nil
		}, nil).
		Step("insert_file", func(ctx context.Context) error {
			row, err := s.files.InsertStoredFile(ctx, &models.StoredFile{URL: publicURL, MimeType: contentType})
			if err != nil {
				metrics.OrphanedBlobsTotal.Inc()
				s.log.Warn("blob left without metadata", "path", storagePath, "err", err)
				return err
			}
			file = row
			return nil
		}, func(ctx context.Context) error {
			return s.files.DeleteStoredFile(ctx, file.ID)
		}).
		Step("insert_detail", func(ctx context.Context) error {
			_, err := s.files.InsertStoredFileDetail(ctx, &models.StoredFileDetail{
				FileID:    file.ID,
				Path:      storagePath,
				Size:      int64(len(in.Data)),
				Extension: strings.TrimPrefix(path.Ext(storagePath), "."),
			})
			return err
		}, nil)

	if err := run.Run(ctx); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
		return nil, apperr.Remote(op, err)
	}

	metrics.ImageUploadsTotal.WithLabelValues("stored").Inc()
	s.log.Info("image stored", "file_id", file.ID, "path", storagePath, "size", len(in.Data))
	return &UploadResult{FileID: file.ID, FileURL: publicURL}, nil
}

// DeleteImage removes the blob and then its metadata. When the blob cannot
// be removed nothing else is touched, so metadata never outlives a blob the
// caller was told is gone.
func (s *ImageService) DeleteImage(ctx context.Context, fileID string) (err error) {
	const op = "DeleteImage"
	defer recoverInto(op, s.log, &err)

	if fileID == "" {
		return apperr.Validationf(op, "file id is required")
	}

	detail, err := s.files.GetStoredFileDetail(ctx, fileID)
	if err != nil {
		return apperr.Remote(op, err)
	}
	if err := s.storage.Remove(ctx, detail.Path); err != nil {
		return apperr.Remote(op, fmt.Errorf("failed to remove blob %s: %w", detail.Path, err))
	}
	if err := s.files.DeleteStoredFile(ctx, fileID); err != nil {
		return apperr.Remote(op, err)
	}

	s.log.Info("image deleted", "file_id", fileID, "path", detail.Path)
	return nil
}

func (s *ImageService) checkUpload(in ImageUpload) (string, error) {
	size := int64(len(in.Data))
	if size == 0 {
		return "", fmt.Errorf("file is empty")
	}
	if size > s.maxBytes {
		return "", fmt.Errorf("file is %d bytes, limit is %d MB", size, s.maxBytes>>20)
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(in.Data).String()
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q, an image is required", contentType)
	}
	return contentType, nil
}

// storagePath builds <folder>/<millis>_<token><ext>.
func (s *ImageService) storagePath(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if m := mimetype.Lookup(contentType); m != nil {
			ext = m.Extension()
		}
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%d_%s%s", s.now().UnixMilli(), token, ext)
	if s.folder == "" {
		return name
	}
	return s.folder + "/" + name
}
