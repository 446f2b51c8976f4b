package public

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
)

// cronSendEmailHandler handles GET /cron/sendEmail, the scheduled sweep over
// submitted surveys still awaiting their confirmation email. The route is
// gated by a bearer secret; without one configured it refuses to run rather
// than running open.
func (h *Handler) cronSendEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(h.cronSecret) == "" {
			common.WriteJSON(h.logger, w, http.StatusServiceUnavailable, map[string]string{
				"error": "cron secret is not configured",
			})
			return
		}

		authHeader := r.Header.Get("Authorization")
		expected := "Bearer " + h.cronSecret
		if subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) != 1 {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{
				"error": "Unauthorized",
			})
			return
		}

		result, err := h.emailBatch.SendPendingEmails(r.Context())
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		payload := map[string]any{
			"success":   true,
			"processed": result.Processed,
			"sent":      result.Sent,
			"failed":    result.Failed,
			"results":   result.Results,
		}
		if result.Processed == 0 {
			payload["message"] = "No surveys to process"
		}

		common.WriteJSON(h.logger, w, http.StatusOK, payload)
	}
}
