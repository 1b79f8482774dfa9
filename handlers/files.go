package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"butler-server/middleware"
	"butler-server/models"
	"butler-server/store"
)

type FileHandler struct {
	store       *store.Store
	uploadDir   string
	downloadDir string
}

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func NewFileHandler(s *store.Store, uploadDir, downloadDir string) *FileHandler {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(fmt.Sprintf("Failed to create upload directory: %v", err))
	}
	return &FileHandler{store: s, uploadDir: uploadDir, downloadDir: downloadDir}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Parse multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "File too large (max 50MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	kind := kindFromMime(contentType)
	if kind == "" {
		http.Error(w, "File type not allowed. Supported: images, videos, documents", http.StatusBadRequest)
		return
	}

	// Generate unique filename
	ext := filepath.Ext(header.Filename)
	randBytes := make([]byte, 16)
	rand.Read(randBytes)
	filename := hex.EncodeToString(randBytes) + ext

	destPath := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(destPath)
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(destPath)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	if _, err := h.store.CreateFile(userID, header.Filename, filename, kind, contentType, size); err != nil {
		os.Remove(destPath)
		http.Error(w, "Failed to record file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadResponse{
		URL:      "/api/files/" + filename,
		Filename: header.Filename,
		Size:     size,
		MimeType: contentType,
	})
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	files, err := h.store.GetFilesForOwner(userID, r.URL.Query().Get("kind"))
	if err != nil {
		http.Error(w, "Failed to fetch files", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []models.File{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

// Serve delivers a stored file by its generated name. Uploads and video
// downloads share the /api/files URL space.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		http.Error(w, "Filename required", http.StatusBadRequest)
		return
	}

	// Prevent directory traversal
	filename = filepath.Base(filename)

	path := filepath.Join(h.uploadDir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) && h.downloadDir != "" {
		path = filepath.Join(h.downloadDir, filename)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=31536000")
	http.ServeFile(w, r, path)
}

func kindFromMime(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.FileKindPhoto
	case strings.HasPrefix(contentType, "video/"):
		return models.FileKindVideo
	case contentType == "application/pdf",
		contentType == "text/plain",
		strings.HasPrefix(contentType, "application/"):
		return models.FileKindDocument
	default:
		return ""
	}
}
