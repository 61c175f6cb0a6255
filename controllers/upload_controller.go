package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staycation/services"
)

type UploadController struct {
	Storage  *services.LocalStorage
	Uploader services.ImageUploader
}

func NewUploadController(storage *services.LocalStorage, uploader services.ImageUploader) *UploadController {
	return &UploadController{Storage: storage, Uploader: uploader}
}

// Serve godoc
// @Summary Serve an uploaded file
// @Tags uploads
// @Param filepath path string true "Path below the upload dir"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Router /uploads/{filepath} [get]
func (u *UploadController) Serve(c *gin.Context) {
	full, err := u.Storage.Resolve(c.Param("filepath"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Type", services.ContentType(full))
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(full)
}

// UploadImages godoc
// @Summary Upload images to the image host
// @Tags uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Param files formData file true "Images"
// @Success 200 {object} map[string]interface{}
// @Router /uploads/images [post]
func (u *UploadController) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(services.BadRequest("no files uploaded"))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	urls, err := services.UploadImages(c.Request.Context(), u.Uploader, files, "uploads")
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "upload successful", gin.H{"urls": urls})
}
