package routes

import (
	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/services"
)

// RegisterUploadRoutes sets up routes for image upload and presigned S3 URLs
func RegisterUploadRoutes(r *mux.Router, uploadService *services.UploadService, maxBytes int64, log *logger.Logger) {
	controller := controllers.NewUploadController(uploadService, maxBytes, log)

	uploadRouter := r.PathPrefix("/upload").Subrouter()
	uploadRouter.HandleFunc("/image", controller.UploadImage).Methods("POST")
	uploadRouter.HandleFunc("/presign", controller.GeneratePresignedURL).Methods("POST")
	uploadRouter.HandleFunc("/presign-read", controller.GetPresignedReadURL).Methods("POST")
}
