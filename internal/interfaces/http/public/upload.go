package public

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
)

const maxUploadSize = 5 << 20 // 5 MiB

// uploadHandler handles POST /upload: stores a profile picture and optionally
// deletes the one it replaces.
func (h *Handler) uploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "File size must be less than 5MB",
			})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "No file provided",
			})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "File must be an image",
			})
			return
		}
		if header.Size > maxUploadSize {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "File size must be less than 5MB",
			})
			return
		}

		// Replaced image goes first; a failed delete never blocks the upload.
		if oldURL := strings.TrimSpace(r.FormValue("oldUrl")); oldURL != "" {
			if err := h.blobs.Delete(r.Context(), oldURL); err != nil {
				h.logger.Warn("failed to delete old image",
					zap.String("url", oldURL),
					zap.Error(err))
			}
		}

		url, err := h.blobs.Save(r.Context(), header.Filename, contentType, file)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success": true,
			"url":     url,
		})
	}
}

// uploadDeleteHandler handles DELETE /upload?url=.
func (h *Handler) uploadDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		if url == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "URL parameter is required",
			})
			return
		}

		if err := h.blobs.Delete(r.Context(), url); err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Image deleted successfully",
		})
	}
}
