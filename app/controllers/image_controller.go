package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/shashiranjanraj/brewhouse/app/services"
	"github.com/shashiranjanraj/brewhouse/pkg/ctx"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
	"github.com/shashiranjanraj/brewhouse/pkg/response"
)

type ImageController struct {
	service  *services.ImageService
	maxBytes int64
}

func NewImageController(service *services.ImageService, maxBytes int64) *ImageController {
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	return &ImageController{service: service, maxBytes: maxBytes}
}

// Upload handles POST /upload with a multipart "file" field.
func (c *ImageController) Upload(cx *ctx.Context) {
	cx.R.Body = http.MaxBytesReader(cx.W, cx.R.Body, c.maxBytes)

	file, header, err := cx.R.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			cx.Error(http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		cx.Error(http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	url, err := c.service.Upload(cx.Context(), cx.MustPrincipal(), header.Filename, file)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.OK("File uploaded successfully", response.Payload{"image_url": url})
}

// Serve handles GET /uploads/{filename}.
func (c *ImageController) Serve(cx *ctx.Context) {
	rc, contentType, err := c.service.Open(cx.Context(), cx.Param("filename"))
	if err != nil {
		cx.Fail(err)
		return
	}
	defer rc.Close()

	cx.W.Header().Set("Content-Type", contentType)
	cx.W.Header().Set("Cache-Control", "public, max-age=86400")
	cx.W.WriteHeader(http.StatusOK)
	if _, err := io.Copy(cx.W, rc); err != nil {
		logger.WithCtx(cx.Context()).Warn("image stream interrupted", "error", err)
	}
}
