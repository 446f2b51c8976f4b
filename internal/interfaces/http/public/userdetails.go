package public

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
	"github.com/vrtmanagement/feedback-system/internal/survey/application"
)

const maxJSONRequestBody = 1 << 20 // 1 MiB

type userDetailsRequest struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Company        string `json:"company"`
	ProfilePicture string `json:"profilePicture"`
	SurveyID       string `json:"surveyId"`
}

// userDetailsCreateHandler handles POST /userdetails: create a draft or
// update the identity fields of an existing one.
func (h *Handler) userDetailsCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req userDetailsRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONRequestBody))
		if err := decoder.Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("invalid request body: %v", err),
			})
			return
		}

		survey, err := h.lifecycle.UpsertUserDetails(r.Context(), application.UpsertUserDetailsCommand{
			SurveyID:       req.SurveyID,
			FullName:       req.FullName,
			Email:          req.Email,
			Phone:          req.Phone,
			Address:        req.Address,
			Company:        req.Company,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]any{
			"success":  true,
			"message":  "User details saved successfully",
			"surveyId": survey.ID,
			"survey":   buildSurveyResponse(*survey),
		})
	}
}

// userDetailsListHandler handles GET /userdetails?email=&surveyId=.
func (h *Handler) userDetailsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := application.SurveyFilter{
			ID:    r.URL.Query().Get("surveyId"),
			Email: r.URL.Query().Get("email"),
		}

		surveys, err := h.queries.List(r.Context(), filter)
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success": true,
			"surveys": buildSurveyListResponse(surveys),
		})
	}
}
