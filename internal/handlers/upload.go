package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/placement-tracker/apiserver/internal/storage"
)

const (
	maxMultipartMemory = 8 << 20
	maxUploadBytes     = 16 << 20
	formFieldFile      = "file"
)

// UploadHandler stores uploaded files in object storage and returns
// their public URL.
type UploadHandler struct {
	storage storage.ObjectStorage
	baseURL string
}

// NewUploadHandler constructs an UploadHandler. storage may be nil when
// no backend is configured; uploads then respond 503.
func NewUploadHandler(storage storage.ObjectStorage, baseURL string) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload accepts one multipart file and stores it under a random key.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Upload storage not configured")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxUploadBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	key := uuid.NewString() + sanitizeExt(header.Filename)
	if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{URL: h.baseURL + "/" + key})
}

// UploadResponse carries the public URL of a stored file.
type UploadResponse struct {
	URL string `json:"url"`
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

// sanitizeExt keeps only a plain alphanumeric extension from the
// client-supplied filename.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
