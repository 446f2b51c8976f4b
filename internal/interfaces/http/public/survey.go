package public

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vrtmanagement/feedback-system/internal/interfaces/http/common"
	"github.com/vrtmanagement/feedback-system/internal/survey/application"
	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

type submitSurveyRequest struct {
	QuestionsAndAnswers []questionAnswerPayload `json:"questionsAndAnswers"`
	SurveyID            string                  `json:"surveyId"`
	Email               string                  `json:"email"`
}

// surveySubmitHandler handles POST /survey: the draft→submitted transition.
func (h *Handler) surveySubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var req submitSurveyRequest
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONRequestBody))
		if err := decoder.Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("invalid request body: %v", err),
			})
			return
		}

		answers := make([]application.AnswerInput, 0, len(req.QuestionsAndAnswers))
		for _, qa := range req.QuestionsAndAnswers {
			answers = append(answers, application.AnswerInput{
				QuestionID:   qa.QuestionID,
				Question:     qa.Question,
				QuestionType: domain.QuestionType(qa.QuestionType),
				Answer:       qa.Answer,
			})
		}

		result, err := h.lifecycle.SubmitAnswers(r.Context(), application.SubmitAnswersCommand{
			SurveyID: req.SurveyID,
			Email:    req.Email,
			Answers:  answers,
		})
		if err != nil {
			common.WriteError(h.logger, w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Survey submitted successfully",
			"surveyId":  result.SurveyID,
			"userEmail": result.Email,
			"fullName":  result.FullName,
		})
	}
}

// surveyListHandler handles GET /survey?userEmail=&status=.
func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := application.SurveyFilter{
			Email:             r.URL.Query().Get("userEmail"),
			Status:            domain.Status(r.URL.Query().Get("status")),
			SortBySubmittedAt: true,
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
