package controllers

import (
	"errors"
	"net/http"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

// UploadFormField is the multipart field carrying the image.
const UploadFormField = "snapImage"

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files.
const multipartMemory = 4 << 20

type UploadController struct {
	UploadService *services.UploadService
	MaxBytes      int64
	log           *logger.Logger
}

func NewUploadController(service *services.UploadService, maxBytes int64, log *logger.Logger) *UploadController {
	return &UploadController{UploadService: service, MaxBytes: maxBytes, log: log.With("controller", "upload")}
}

// UploadImage - POST /api/upload/image (multipart, field "snapImage")
func (c *UploadController) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.MaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		c.log.Warn("Upload rejected", "error", err)
		utils.WriteJSONResponse(w, http.StatusBadRequest, map[string]string{
			"message": "File upload failed.",
			"error":   err.Error(),
		})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(UploadFormField)
	if errors.Is(err, http.ErrMissingFile) {
		utils.WriteMessage(w, http.StatusBadRequest, "No file was uploaded.")
		return
	}
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, map[string]string{
			"message": "File upload failed.",
			"error":   err.Error(),
		})
		return
	}
	defer file.Close()

	res, err := c.UploadService.Upload(r.Context(), services.UploadInput{
		Filename: header.Filename,
		Body:     file,
		Size:     header.Size,
	})
	if err != nil {
		writeError(w, c.log, err, "File upload failed.", nil)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
		"message":  "File uploaded successfully",
		"imageUrl": res.ImageURL,
	})
}

// GeneratePresignedURL - POST /api/upload/presign
func (c *UploadController) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	res, err := c.UploadService.PresignUpload(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		writeError(w, c.log, err, "Failed to generate pre-signed URL", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, res)
}

// GetPresignedReadURL - POST /api/upload/presign-read
func (c *UploadController) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	res, err := c.UploadService.PresignRead(r.Context(), payload.Key)
	if err != nil {
		writeError(w, c.log, err, "Failed to generate read pre-signed URL", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, res)
}
