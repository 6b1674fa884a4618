package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

// PhotoField is the multipart field carrying the photo.
const PhotoField = "file"

// BootcampPhotoUpload godoc
// @ID          bootcampPhotoUpload
// @Summary     Upload a bootcamp photo
// @Description Stores an image as photo_<id><ext> and records it on the bootcamp.
// @Tags        Bootcamps
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string  true  "Bootcamp ID (UUID)"  format(uuid)
// @Param       file  formData  file    true  "Image"
// @Success     200  {object}  handlers.Envelope{data=string}
// @Failure     400  {object}  handlers.ErrorResponse  "Missing file, not an image, or too large"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Problem uploading the image"
// @Router      /bootcamps/{id}/photo [put]
func (h *Handlers) BootcampPhotoUpload(c *gin.Context) (err error) {
	fh, ferr := c.FormFile(PhotoField)
	defer func() {
		middleware.RecordOperation("bootcamp", "photo", err)
		if fh != nil {
			middleware.ObservePhotoUpload(fh.Size, err)
		}
	}()

	var up *services.Upload
	switch {
	case ferr == nil:
		up = &services.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		}
	case isBodyTooLarge(ferr):
		// Reported by the service after the bootcamp and ownership checks.
		up = &services.Upload{TooLarge: true}
	}

	name, err := h.photos.Upload(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), up)
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, name)
	return nil
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
