package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"ecosnap_server/logger"
)

const (
	uploadPrefix = "snaps/"
	sniffLen     = 3072
)

// UploadInput is one received file.
type UploadInput struct {
	Filename string
	Body     io.Reader
	// Size in bytes, or -1 when unknown.
	Size int64
}

// UploadResult replaces the success branch of the upload callback.
type UploadResult struct {
	Key         string `json:"key"`
	ImageURL    string `json:"imageUrl"`
	ContentType string `json:"contentType"`
}

// PresignResult carries a presigned URL and, for uploads, the object key.
type PresignResult struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

type UploadService struct {
	Blobs BlobStore

	log   *logger.Logger
	newID func() string
}

func NewUploadService(blobs BlobStore, log *logger.Logger) *UploadService {
	return &UploadService{Blobs: blobs, log: log.With("service", "upload"), newID: uuid.NewString}
}

// Upload stores the file under snaps/<uuid><ext>. The content type is
// sniffed from the payload, not trusted from the client.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if in.Body == nil {
		return UploadResult{}, invalid("snapImage", "No file was uploaded.")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return UploadResult{}, invalid("snapImage", "No file was uploaded.")
	}
	contentType := mimetype.Detect(head).String()

	key := uploadPrefix + s.newID() + strings.ToLower(filepath.Ext(path.Base(in.Filename)))
	// Seekable bodies are rewound so the SDK can sign and retry the payload.
	var body io.Reader
	if rs, ok := in.Body.(io.ReadSeeker); ok {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return UploadResult{}, fmt.Errorf("rewind upload: %w", err)
		}
		body = rs
	} else {
		body = io.MultiReader(bytes.NewReader(head), in.Body)
	}

	url, err := s.Blobs.Put(ctx, key, contentType, body, in.Size)
	if err != nil {
		s.log.Error("❌ Upload failed", "key", key, "error", err)
		return UploadResult{}, err
	}

	s.log.Info("✅ File uploaded", "key", key, "contentType", contentType)
	return UploadResult{Key: key, ImageURL: url, ContentType: contentType}, nil
}

// PresignUpload returns a short-lived URL the client can PUT the file to.
func (s *UploadService) PresignUpload(ctx context.Context, fileName, fileType string) (PresignResult, error) {
	if strings.TrimSpace(fileName) == "" || strings.TrimSpace(fileType) == "" {
		return PresignResult{}, invalid("", "fileName and fileType are required.")
	}
	key := uploadPrefix + s.newID() + strings.ToLower(filepath.Ext(path.Base(fileName)))
	url, err := s.Blobs.PresignPut(ctx, key, fileType)
	if err != nil {
		return PresignResult{}, err
	}
	return PresignResult{URL: url, Key: key}, nil
}

func (s *UploadService) PresignRead(ctx context.Context, key string) (PresignResult, error) {
	if strings.TrimSpace(key) == "" {
		return PresignResult{}, invalid("key", "key is required.")
	}
	url, err := s.Blobs.PresignGet(ctx, key)
	if err != nil {
		return PresignResult{}, err
	}
	return PresignResult{URL: url}, nil
}
