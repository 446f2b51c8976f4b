package domain

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a survey record. A record is created as
// StatusDraft by the user-details step and moves to StatusSubmitted exactly
// once when the questionnaire answers arrive. There is no edge back.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// QuestionType classifies how a question was presented to the respondent.
type QuestionType string

const (
	QuestionTypeScale          QuestionType = "scale"
	QuestionTypeYesNo          QuestionType = "yes-no"
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeTextInput      QuestionType = "text-input"
)

// QuestionAnswer is one answered questionnaire item. The sequence is empty
// while the record is a draft and overwritten as a whole on submission.
type QuestionAnswer struct {
	QuestionID   string
	Question     string
	QuestionType QuestionType
	Answer       string
}

// Referral is a third party nominated by a respondent against their survey.
type Referral struct {
	ID          string
	Name        string
	Email       string
	SubmittedAt time.Time
}

// Survey is the central record: identity details collected in step one,
// questionnaire answers filled in step two, referrals appended afterwards.
type Survey struct {
	ID                  string
	FullName            string
	Email               string
	Phone               string
	Address             string
	Company             string
	ProfilePicture      string
	QuestionsAndAnswers []QuestionAnswer
	Referrals           []Referral
	Status              Status
	EmailSent           bool
	SubmittedAt         *time.Time
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NormalizeEmail trims and lowercases an address; referral uniqueness and
// draft lookup both key on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasReferral reports whether a referral with the same normalized email is
// already recorded on this survey.
func (s *Survey) HasReferral(email string) bool {
	normalized := NormalizeEmail(email)
	for _, ref := range s.Referrals {
		if NormalizeEmail(ref.Email) == normalized {
			return true
		}
	}
	return false
}
