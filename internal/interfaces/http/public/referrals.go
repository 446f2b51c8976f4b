package public

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
)

type addReferralRequest struct {
	SurveyID string `json:"surveyId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// referralCreateHandler handles POST /referrals.
func (h *Handler) referralCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req addReferralRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONRequestBody))
		if err := decoder.Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("invalid request body: %v", err),
			})
			return
		}

		referral, total, err := h.lifecycle.AddReferral(r.Context(), req.SurveyID, req.Name, req.Email)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success":        true,
			"message":        "Referral added successfully",
			"referral":       buildReferralResponse(*referral),
			"totalReferrals": total,
		})
	}
}

// referralListHandler handles GET /referrals?surveyId=.
func (h *Handler) referralListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := r.URL.Query().Get("surveyId")
		if surveyID == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": "Survey ID is required",
			})
			return
		}

		referrals, err := h.lifecycle.ListReferrals(r.Context(), surveyID)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		out := make([]referralResponse, 0, len(referrals))
		for _, ref := range referrals {
			out = append(out, buildReferralResponse(ref))
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success":        true,
			"referrals":      out,
			"totalReferrals": len(out),
		})
	}
}
