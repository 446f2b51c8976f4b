package application

import (
	"context"
	"io"
	"time"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

// SurveyRepository is the port to the document store. Implementations are
// expected to provide atomic single-document read-modify-write; no locking
// happens above this interface.
type SurveyRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Survey, error)
	FindDraftByEmail(ctx context.Context, email string) (*domain.Survey, error)
	Find(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error)
	Insert(ctx context.Context, survey *domain.Survey) error
	Update(ctx context.Context, survey *domain.Survey) error
	FindPendingEmail(ctx context.Context, cutoff time.Time, limit int) ([]domain.Survey, error)
	MarkEmailSent(ctx context.Context, id string) error
}

// BlobStore abstracts profile-picture storage. The lifecycle service only
// deletes; uploads go through the HTTP layer directly.
type BlobStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Dispatcher schedules a thank-you notification for a submitted survey.
// Enqueue must not block; a false return means the dispatch was not accepted
// and the scheduled sweep remains the only delivery path.
type Dispatcher interface {
	Enqueue(survey domain.Survey) bool
}

// NotificationSender delivers a single thank-you message synchronously.
// Used by the batch sweep.
type NotificationSender interface {
	SendThankYou(ctx context.Context, survey *domain.Survey) error
}

// SurveyFilter narrows survey lookups for the read endpoints.
type SurveyFilter struct {
	ID     string
	Email  string
	Status domain.Status
	// SortBySubmittedAt orders results by submittedAt desc instead of
	// createdAt desc.
	SortBySubmittedAt bool
	Limit             int
}

// UpsertUserDetailsCommand carries step-one input.
type UpsertUserDetailsCommand struct {
	SurveyID       string
	FullName       string
	Email          string
	Phone          string
	Address        string
	Company        string
	ProfilePicture string
}

// AnswerInput is one questionnaire item as received from the client.
type AnswerInput struct {
	QuestionID   string
	Question     string
	QuestionType domain.QuestionType
	Answer       string
}

// SubmitAnswersCommand carries step-two input. SurveyID wins over Email when
// resolving the draft.
type SubmitAnswersCommand struct {
	SurveyID string
	Email    string
	Answers  []AnswerInput
}

// SubmitResult identifies the submitted record for the caller.
type SubmitResult struct {
	SurveyID string
	Email    string
	FullName string
}
