package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BatchItem is the per-survey outcome of one sweep run.
type BatchItem struct {
	Email  string `json:"email"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchResult summarizes one sweep run.
type BatchResult struct {
	Processed int         `json:"processed"`
	Sent      int         `json:"sent"`
	Failed    int         `json:"failed"`
	Results   []BatchItem `json:"results"`
}

// EmailBatchService is the scheduled sweep over submitted surveys whose
// confirmation email has not gone out yet. It is the only retry path for
// dispatches the inline queue failed or dropped.
type EmailBatchService struct {
	repo   SurveyRepository
	sender NotificationSender
	logger *zap.Logger
	// grace keeps the sweep from racing the inline dispatch right after
	// submission.
	grace time.Duration
	limit int
}

// NewEmailBatchService wires the sweep with its grace window and per-run cap.
func NewEmailBatchService(repo SurveyRepository, sender NotificationSender, logger *zap.Logger, grace time.Duration, limit int) *EmailBatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 25
	}
	return &EmailBatchService{
		repo:   repo,
		sender: sender,
		logger: logger,
		grace:  grace,
		limit:  limit,
	}
}

// SendPendingEmails sends confirmations for pending surveys submitted before
// the grace cutoff and marks each one sent on success. A failed send is
// recorded in the result and retried on the next run.
func (s *EmailBatchService) SendPendingEmails(ctx context.Context) (*BatchResult, error) {
	cutoff := time.Now().UTC().Add(-s.grace)
	pending, err := s.repo.FindPendingEmail(ctx, cutoff, s.limit)
	if err != nil {
		return nil, fmt.Errorf("find surveys pending email: %w", err)
	}

	s.logger.Info("email sweep starting", zap.Int("pending", len(pending)))

	result := &BatchResult{
		Processed: len(pending),
		Results:   []BatchItem{},
	}

	for i := range pending {
		survey := pending[i]
		if err := s.sender.SendThankYou(ctx, &survey); err != nil {
			result.Failed++
			result.Results = append(result.Results, BatchItem{
				Email:  survey.Email,
				Status: "failed",
				Error:  err.Error(),
			})
			s.logger.Warn("sweep email failed",
				zap.String("surveyId", survey.ID),
				zap.String("email", survey.Email),
				zap.Error(err))
			continue
		}

		if err := s.repo.MarkEmailSent(ctx, survey.ID); err != nil {
			// The mail went out; the flag miss means one duplicate on the
			// next run at worst.
			s.logger.Warn("failed to mark email sent",
				zap.String("surveyId", survey.ID),
				zap.Error(err))
		}

		result.Sent++
		result.Results = append(result.Results, BatchItem{
			Email:  survey.Email,
			Status: "sent",
		})
	}

	return result, nil
}
