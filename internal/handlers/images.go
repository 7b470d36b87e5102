package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/models"
	"site-admin-backend/internal/services"
)

var imageFieldNames = []string{"file", "image", "images", "logo", "thumbnail"}

type ImageHandler struct {
	images   *services.ImageService
	maxBytes int64
}

func NewImageHandler(images *services.ImageService, maxBytes int64) *ImageHandler {
	return &ImageHandler{images: images, maxBytes: maxBytes}
}

// Upload godoc
// @Summary     Upload an image
// @Description Stores one image in the bucket and records its file and detail rows.
// @Description The returned fileId is what sites and events reference.
// @Tags        images
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Image file (also accepted as image, images, logo or thumbnail)"
// @Success     201 {object} models.UploadImageResponse
// @Failure     400 {object} models.UploadImageResponse
// @Failure     502 {object} models.UploadImageResponse
// @Router      /images [post]
func (h *ImageHandler) Upload(c *gin.Context) {
	// Leave headroom over the blob limit for the rest of the form
	limit := h.maxBytes + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(limit); err != nil {
		h.uploadFailed(c, apperr.Validationf("UploadImage", "failed to parse multipart form: %v", err))
		return
	}

	form := c.Request.MultipartForm
	var header *multipart.FileHeader
	for _, name := range imageFieldNames {
		if f := form.File[name]; len(f) > 0 {
			header = f[0]
			break
		}
	}
	if header == nil {
		available := make([]string, 0, len(form.File))
		for name := range form.File {
			available = append(available, name)
		}
		h.uploadFailed(c, apperr.Validationf("UploadImage",
			"no file uploaded, use one of these field names: %v. Available fields in request: %v", imageFieldNames, available))
		return
	}

	data, err := readPart(header, h.maxBytes)
	if err != nil {
		h.uploadFailed(c, apperr.Validation("UploadImage", err))
		return
	}

	res, err := h.images.UploadImage(c.Request.Context(), services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.uploadFailed(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.UploadImageResponse{
		Success: true,
		FileURL: res.FileURL,
		FileID:  res.FileID,
	})
}

// Delete godoc
// @Summary     Delete an image
// @Description Removes the blob, then its file and detail rows. When the blob cannot be
// @Description removed the rows are kept.
// @Tags        images
// @Produce     json
// @Security    Bearer
// @Param       file_id path string true "Stored file ID (UUID)"
// @Success     200 {object} models.DeleteImageResponse
// @Failure     404 {object} models.DeleteImageResponse
// @Failure     502 {object} models.DeleteImageResponse
// @Router      /images/{file_id} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "file_id")
	if !valid {
		return
	}
	if err := h.images.DeleteImage(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		c.JSON(apperr.HTTPStatus(err), models.DeleteImageResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.DeleteImageResponse{Success: true})
}

func (h *ImageHandler) uploadFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), models.UploadImageResponse{Error: err.Error()})
}

// readPart reads at most limit+1 bytes so the service can reject oversize
// files without the handler buffering the whole part.
func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
