package application

import (
	"context"
	"fmt"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

const defaultListLimit = 100

// QueryService serves the read-only survey listings behind the GET endpoints.
type QueryService struct {
	repo SurveyRepository
}

// NewQueryService builds a QueryService over the given repository.
func NewQueryService(repo SurveyRepository) *QueryService {
	return &QueryService{repo: repo}
}

// List returns surveys matching the filter, capped at 100 records.
func (s *QueryService) List(ctx context.Context, filter SurveyFilter) ([]domain.Survey, error) {
	if filter.Email != "" {
		filter.Email = domain.NormalizeEmail(filter.Email)
	}
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultListLimit
	}

	surveys, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	if surveys == nil {
		surveys = []domain.Survey{}
	}
	return surveys, nil
}
