package public

import (
	"time"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

type questionAnswerPayload struct {
	QuestionID   string `json:"questionId"`
	Question     string `json:"question"`
	QuestionType string `json:"questionType,omitempty"`
	Answer       string `json:"answer"`
}

type referralResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type surveyResponse struct {
	ID                  string                  `json:"id"`
	FullName            string                  `json:"fullName"`
	Email               string                  `json:"email"`
	Phone               string                  `json:"phone,omitempty"`
	Address             string                  `json:"address,omitempty"`
	Company             string                  `json:"company"`
	ProfilePicture      string                  `json:"profilePicture,omitempty"`
	QuestionsAndAnswers []questionAnswerPayload `json:"questionsAndAnswers"`
	Referrals           []referralResponse      `json:"referrals"`
	Status              string                  `json:"status"`
	EmailSent           bool                    `json:"emailSent"`
	SubmittedAt         *time.Time              `json:"submittedAt,omitempty"`
	CompletedAt         *time.Time              `json:"completedAt,omitempty"`
	CreatedAt           time.Time               `json:"createdAt"`
	UpdatedAt           time.Time               `json:"updatedAt"`
}

func buildReferralResponse(ref domain.Referral) referralResponse {
	return referralResponse{
		ID:          ref.ID,
		Name:        ref.Name,
		Email:       ref.Email,
		SubmittedAt: ref.SubmittedAt,
	}
}

func buildSurveyResponse(survey domain.Survey) surveyResponse {
	answers := make([]questionAnswerPayload, 0, len(survey.QuestionsAndAnswers))
	for _, qa := range survey.QuestionsAndAnswers {
		answers = append(answers, questionAnswerPayload{
			QuestionID:   qa.QuestionID,
			Question:     qa.Question,
			QuestionType: string(qa.QuestionType),
			Answer:       qa.Answer,
		})
	}

	referrals := make([]referralResponse, 0, len(survey.Referrals))
	for _, ref := range survey.Referrals {
		referrals = append(referrals, buildReferralResponse(ref))
	}

	return surveyResponse{
		ID:                  survey.ID,
		FullName:            survey.FullName,
		Email:               survey.Email,
		Phone:               survey.Phone,
		Address:             survey.Address,
		Company:             survey.Company,
		ProfilePicture:      survey.ProfilePicture,
		QuestionsAndAnswers: answers,
		Referrals:           referrals,
		Status:              string(survey.Status),
		EmailSent:           survey.EmailSent,
		SubmittedAt:         survey.SubmittedAt,
		CompletedAt:         survey.CompletedAt,
		CreatedAt:           survey.CreatedAt,
		UpdatedAt:           survey.UpdatedAt,
	}
}

func buildSurveyListResponse(surveys []domain.Survey) []surveyResponse {
	out := make([]surveyResponse, 0, len(surveys))
	for _, survey := range surveys {
		out = append(out, buildSurveyResponse(survey))
	}
	return out
}
