package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vrtmanagement/feedback-system/internal/survey/application"
	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

// SurveyRepository stores survey records in a single MongoDB collection.
// All writes are single-document replaces, so atomicity comes from the store.
type SurveyRepository struct {
	surveys *mongo.Collection
}

// NewSurveyRepository binds the repository to its collection.
func NewSurveyRepository(db *mongo.Database, collection string) *SurveyRepository {
	return &SurveyRepository{surveys: db.Collection(collection)}
}

// EnsureIndexes creates the query indexes: (email, submittedAt desc), status,
// and company. Safe to call on every startup.
func (r *SurveyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.surveys.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "submittedAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "company", Value: 1}}},
	})
	return err
}

// FindByID loads a single survey. An unknown or malformed id surfaces as a
// NotFoundError so callers need not care which it was.
func (r *SurveyRepository) FindByID(ctx context.Context, id string) (*domain.Survey, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, application.NewNotFoundError("survey not found")
	}

	var doc SurveyDocument
	if err := r.surveys.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.NewNotFoundError("survey not found")
		}
		return nil, err
	}

	survey := mapSurveyDocument(doc)
	return &survey, nil
}

// FindDraftByEmail resolves the open draft for an email address, the fallback
// lookup when the client lost its survey id between steps.
func (r *SurveyRepository) FindDraftByEmail(ctx context.Context, email string) (*domain.Survey, error) {
	filter := bson.M{
		"email":  domain.NormalizeEmail(email),
		"status": string(domain.StatusDraft),
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var doc SurveyDocument
	if err := r.surveys.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, application.NewNotFoundError("no draft survey found")
		}
		return nil, err
	}

	survey := mapSurveyDocument(doc)
	return &survey, nil
}

// Find lists surveys matching the filter, newest first.
func (r *SurveyRepository) Find(ctx context.Context, filter application.SurveyFilter) ([]domain.Survey, error) {
	mongoFilter := bson.M{}
	if filter.ID != "" {
		objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(filter.ID))
		if err != nil {
			return []domain.Survey{}, nil
		}
		mongoFilter["_id"] = objectID
	}
	if filter.Email != "" {
		mongoFilter["email"] = domain.NormalizeEmail(filter.Email)
	}
	if filter.Status != "" {
		mongoFilter["status"] = string(filter.Status)
	}

	sortKey := "createdAt"
	if filter.SortBySubmittedAt {
		sortKey = "submittedAt"
	}
	limit := int64(filter.Limit)
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: -1}}).
		SetLimit(limit)

	cursor, err := r.surveys.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := make([]domain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		surveys = append(surveys, mapSurveyDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return surveys, nil
}

// Insert persists a new record and reflects the assigned id and timestamps
// back onto the domain model.
func (r *SurveyRepository) Insert(ctx context.Context, survey *domain.Survey) error {
	now := time.Now().UTC()
	survey.CreatedAt = now
	survey.UpdatedAt = now

	doc, err := mapSurveyToDocument(survey, primitive.NewObjectID())
	if err != nil {
		return err
	}

	if _, err := r.surveys.InsertOne(ctx, doc); err != nil {
		return err
	}

	survey.ID = doc.ID.Hex()
	return nil
}

// Update replaces the full document, bumping updatedAt.
func (r *SurveyRepository) Update(ctx context.Context, survey *domain.Survey) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(survey.ID))
	if err != nil {
		return application.NewNotFoundError("survey not found")
	}

	survey.UpdatedAt = time.Now().UTC()
	doc, err := mapSurveyToDocument(survey, objectID)
	if err != nil {
		return err
	}

	result, err := r.surveys.ReplaceOne(ctx, bson.M{"_id": objectID}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.NewNotFoundError("survey not found")
	}
	return nil
}

// FindPendingEmail lists submitted surveys that still await their
// confirmation email, oldest submissions first, capped at limit.
func (r *SurveyRepository) FindPendingEmail(ctx context.Context, cutoff time.Time, limit int) ([]domain.Survey, error) {
	filter := bson.M{
		"status":      string(domain.StatusSubmitted),
		"emailSent":   false,
		"submittedAt": bson.M{"$lte": cutoff},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.surveys.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := make([]domain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		surveys = append(surveys, mapSurveyDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return surveys, nil
}

// MarkEmailSent flips the emailSent flag after a confirmed delivery.
func (r *SurveyRepository) MarkEmailSent(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return application.NewNotFoundError("survey not found")
	}

	update := bson.M{"$set": bson.M{
		"emailSent": true,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.surveys.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return application.NewNotFoundError("survey not found")
	}
	return nil
}
