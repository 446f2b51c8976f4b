package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
	"go.uber.org/zap"
)

const (
	// Strict questionnaire contract: 14 required questions plus one optional
	// trailing free-text question.
	minAnswerCount = 14
	maxAnswerCount = 15

	// The trailing question may be submitted with an empty answer as long as
	// it still carries its id and text.
	optionalQuestionID = "q15"
)

var referralEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LifecycleService owns the two-phase creation protocol of a survey record:
// draft creation/update via user details, the single draft→submitted
// transition, and referral bookkeeping.
type LifecycleService struct {
	repo       SurveyRepository
	blobs      BlobStore
	dispatcher Dispatcher
	logger     *zap.Logger
	// legacyValidation relaxes SubmitAnswers to the original loose contract:
	// any non-empty answer sequence with per-item field presence.
	legacyValidation bool
}

// NewLifecycleService wires the lifecycle manager. blobs and dispatcher may be
// nil in tests; their absence only disables the corresponding side effects.
func NewLifecycleService(repo SurveyRepository, blobs BlobStore, dispatcher Dispatcher, logger *zap.Logger, legacyValidation bool) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		repo:             repo,
		blobs:            blobs,
		dispatcher:       dispatcher,
		logger:           logger,
		legacyValidation: legacyValidation,
	}
}

// UpsertUserDetails creates a fresh draft or updates an existing one in place.
// Identity fields are replaced; questionsAndAnswers and status are preserved.
// A replaced profile picture is deleted from blob storage best-effort.
func (s *LifecycleService) UpsertUserDetails(ctx context.Context, cmd UpsertUserDetailsCommand) (*domain.Survey, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	email := domain.NormalizeEmail(cmd.Email)
	company := strings.TrimSpace(cmd.Company)
	if fullName == "" || email == "" || company == "" {
		return nil, NewValidationError("full name, email, and company are required fields")
	}

	var survey *domain.Survey
	oldProfilePicture := ""

	if id := strings.TrimSpace(cmd.SurveyID); id != "" {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil && !IsNotFound(err) {
			return nil, fmt.Errorf("look up survey %s: %w", id, err)
		}
		if existing != nil && existing.Status == domain.StatusDraft {
			oldProfilePicture = existing.ProfilePicture
			existing.FullName = fullName
			existing.Email = email
			existing.Phone = strings.TrimSpace(cmd.Phone)
			existing.Address = strings.TrimSpace(cmd.Address)
			existing.Company = company
			existing.ProfilePicture = strings.TrimSpace(cmd.ProfilePicture)
			survey = existing
		}
	}

	if survey == nil {
		survey = &domain.Survey{
			FullName:            fullName,
			Email:               email,
			Phone:               strings.TrimSpace(cmd.Phone),
			Address:             strings.TrimSpace(cmd.Address),
			Company:             company,
			ProfilePicture:      strings.TrimSpace(cmd.ProfilePicture),
			QuestionsAndAnswers: []domain.QuestionAnswer{},
			Referrals:           []domain.Referral{},
			Status:              domain.StatusDraft,
		}
		if err := s.repo.Insert(ctx, survey); err != nil {
			return nil, fmt.Errorf("insert draft survey: %w", err)
		}
	} else {
		if err := s.repo.Update(ctx, survey); err != nil {
			return nil, fmt.Errorf("update draft survey: %w", err)
		}
	}

	s.deleteOldProfilePicture(ctx, oldProfilePicture, survey.ProfilePicture)

	s.logger.Info("user details saved",
		zap.String("surveyId", survey.ID),
		zap.String("email", survey.Email),
		zap.String("status", string(survey.Status)))

	return survey, nil
}

// deleteOldProfilePicture removes a replaced image from blob storage. Failure
// is logged and never propagated; the draft save already succeeded.
func (s *LifecycleService) deleteOldProfilePicture(ctx context.Context, oldURL, newURL string) {
	oldURL = strings.TrimSpace(oldURL)
	if s.blobs == nil || oldURL == "" || oldURL == newURL {
		return
	}
	if err := s.blobs.Delete(ctx, oldURL); err != nil {
		s.logger.Warn("failed to delete old profile picture",
			zap.String("url", oldURL),
			zap.Error(err))
		return
	}
	s.logger.Info("old profile picture deleted", zap.String("url", oldURL))
}

// SubmitAnswers resolves the draft by id or email, validates the answer
// sequence, and performs the one-way transition to submitted. The thank-you
// dispatch is enqueued after the record is persisted and never affects the
// result.
func (s *LifecycleService) SubmitAnswers(ctx context.Context, cmd SubmitAnswersCommand) (*SubmitResult, error) {
	if err := s.validateAnswers(cmd.Answers); err != nil {
		return nil, err
	}

	survey, err := s.resolveDraft(ctx, cmd.SurveyID, cmd.Email)
	if err != nil {
		return nil, err
	}
	if survey.Status == domain.StatusSubmitted {
		return nil, NewValidationError("survey already submitted")
	}

	now := time.Now().UTC()
	answers := make([]domain.QuestionAnswer, 0, len(cmd.Answers))
	for _, in := range cmd.Answers {
		qt := in.QuestionType
		if qt == "" {
			qt = domain.QuestionTypeTextInput
		}
		answers = append(answers, domain.QuestionAnswer{
			QuestionID:   strings.TrimSpace(in.QuestionID),
			Question:     strings.TrimSpace(in.Question),
			QuestionType: qt,
			Answer:       strings.TrimSpace(in.Answer),
		})
	}

	survey.QuestionsAndAnswers = answers
	survey.Status = domain.StatusSubmitted
	survey.SubmittedAt = &now
	survey.CompletedAt = &now
	survey.EmailSent = false

	if err := s.repo.Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("persist submitted survey: %w", err)
	}

	s.logger.Info("survey submitted",
		zap.String("surveyId", survey.ID),
		zap.String("email", survey.Email),
		zap.Int("answerCount", len(survey.QuestionsAndAnswers)))

	if s.dispatcher != nil {
		if !s.dispatcher.Enqueue(*survey) {
			s.logger.Warn("thank-you dispatch not accepted, leaving record for the scheduled sweep",
				zap.String("surveyId", survey.ID))
		}
	}

	return &SubmitResult{
		SurveyID: survey.ID,
		Email:    survey.Email,
		FullName: survey.FullName,
	}, nil
}

// resolveDraft finds the record created by the user-details step, preferring
// the explicit id over the email+draft lookup.
func (s *LifecycleService) resolveDraft(ctx context.Context, surveyID, email string) (*domain.Survey, error) {
	if id := strings.TrimSpace(surveyID); id != "" {
		survey, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				return nil, NewNotFoundError("no draft survey found, fill user details first")
			}
			return nil, fmt.Errorf("look up survey %s: %w", id, err)
		}
		return survey, nil
	}

	if normalized := domain.NormalizeEmail(email); normalized != "" {
		survey, err := s.repo.FindDraftByEmail(ctx, normalized)
		if err != nil {
			if IsNotFound(err) {
				return nil, NewNotFoundError("no draft survey found, fill user details first")
			}
			return nil, fmt.Errorf("look up draft for %s: %w", normalized, err)
		}
		return survey, nil
	}

	return nil, NewValidationError("surveyId or email is required")
}

// validateAnswers enforces the questionnaire contract. The strict contract
// expects 14 required items plus an optional trailing one; legacy mode only
// checks field presence on a non-empty sequence.
func (s *LifecycleService) validateAnswers(answers []AnswerInput) error {
	if len(answers) == 0 {
		return NewValidationError("questions and answers array is required")
	}

	if !s.legacyValidation {
		if len(answers) < minAnswerCount || len(answers) > maxAnswerCount {
			return NewValidationError(fmt.Sprintf(
				"expected between %d and %d answers, got %d", minAnswerCount, maxAnswerCount, len(answers)))
		}
	}

	for i, in := range answers {
		if strings.TrimSpace(in.QuestionID) == "" || strings.TrimSpace(in.Question) == "" {
			return NewValidationError(fmt.Sprintf("question %d must have questionId and question fields", i+1))
		}
		if s.legacyValidation {
			continue
		}
		if strings.TrimSpace(in.Answer) == "" && strings.TrimSpace(in.QuestionID) != optionalQuestionID {
			return NewValidationError(fmt.Sprintf("question %s requires an answer", strings.TrimSpace(in.QuestionID)))
		}
	}

	return nil
}

// AddReferral appends a nominated third party to a survey. Referrals are
// append-only and unique by normalized email within a survey.
func (s *LifecycleService) AddReferral(ctx context.Context, surveyID, name, email string) (*domain.Referral, int, error) {
	surveyID = strings.TrimSpace(surveyID)
	name = strings.TrimSpace(name)
	if surveyID == "" || name == "" || strings.TrimSpace(email) == "" {
		return nil, 0, NewValidationError("survey ID, name, and email are required fields")
	}

	normalized := domain.NormalizeEmail(email)
	if !referralEmailPattern.MatchString(normalized) {
		return nil, 0, NewValidationError("invalid email format")
	}

	survey, err := s.repo.FindByID(ctx, surveyID)
	if err != nil {
		if IsNotFound(err) {
			return nil, 0, NewNotFoundError("survey not found")
		}
		return nil, 0, fmt.Errorf("look up survey %s: %w", surveyID, err)
	}

	if survey.HasReferral(normalized) {
		return nil, 0, NewValidationError("a referral with this email already exists")
	}

	referral := domain.Referral{
		Name:        name,
		Email:       normalized,
		SubmittedAt: time.Now().UTC(),
	}
	survey.Referrals = append(survey.Referrals, referral)

	if err := s.repo.Update(ctx, survey); err != nil {
		return nil, 0, fmt.Errorf("persist referral: %w", err)
	}

	added := survey.Referrals[len(survey.Referrals)-1]
	s.logger.Info("referral added",
		zap.String("surveyId", survey.ID),
		zap.Int("totalReferrals", len(survey.Referrals)))

	return &added, len(survey.Referrals), nil
}

// ListReferrals returns the referral sequence of a survey. Zero referrals is
// an empty slice, not an error.
func (s *LifecycleService) ListReferrals(ctx context.Context, surveyID string) ([]domain.Referral, error) {
	surveyID = strings.TrimSpace(surveyID)
	if surveyID == "" {
		return nil, NewValidationError("survey ID is required")
	}

	survey, err := s.repo.FindByID(ctx, surveyID)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewNotFoundError("survey not found")
		}
		return nil, fmt.Errorf("look up survey %s: %w", surveyID, err)
	}

	if survey.Referrals == nil {
		return []domain.Referral{}, nil
	}
	return survey.Referrals, nil
}
