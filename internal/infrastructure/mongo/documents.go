package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

// QuestionAnswerDocument is one questionnaire item embedded in a survey
// document. No own _id, matching the store schema.
type QuestionAnswerDocument struct {
	QuestionID   string `bson:"questionId"`
	Question     string `bson:"question"`
	QuestionType string `bson:"questionType"`
	Answer       string `bson:"answer"`
}

// ReferralDocument is one nominated third party embedded in a survey document.
type ReferralDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	SubmittedAt time.Time          `bson:"submittedAt"`
}

// SurveyDocument is the persisted shape of a survey record in the surveys
// collection.
type SurveyDocument struct {
	ID                  primitive.ObjectID       `bson:"_id"`
	FullName            string                   `bson:"fullName"`
	Email               string                   `bson:"email"`
	Phone               string                   `bson:"phone,omitempty"`
	Address             string                   `bson:"address,omitempty"`
	Company             string                   `bson:"company"`
	ProfilePicture      string                   `bson:"profilePicture,omitempty"`
	QuestionsAndAnswers []QuestionAnswerDocument `bson:"questionsAndAnswers"`
	Referrals           []ReferralDocument       `bson:"referrals"`
	Status              string                   `bson:"status"`
	EmailSent           bool                     `bson:"emailSent"`
	SubmittedAt         *time.Time               `bson:"submittedAt,omitempty"`
	CompletedAt         *time.Time               `bson:"completedAt,omitempty"`
	CreatedAt           time.Time                `bson:"createdAt"`
	UpdatedAt           time.Time                `bson:"updatedAt"`
}

func mapSurveyDocument(doc SurveyDocument) domain.Survey {
	answers := make([]domain.QuestionAnswer, 0, len(doc.QuestionsAndAnswers))
	for _, qa := range doc.QuestionsAndAnswers {
		answers = append(answers, domain.QuestionAnswer{
			QuestionID:   qa.QuestionID,
			Question:     qa.Question,
			QuestionType: domain.QuestionType(qa.QuestionType),
			Answer:       qa.Answer,
		})
	}

	referrals := make([]domain.Referral, 0, len(doc.Referrals))
	for _, ref := range doc.Referrals {
		referrals = append(referrals, domain.Referral{
			ID:          ref.ID.Hex(),
			Name:        ref.Name,
			Email:       ref.Email,
			SubmittedAt: ref.SubmittedAt,
		})
	}

	return domain.Survey{
		ID:                  doc.ID.Hex(),
		FullName:            doc.FullName,
		Email:               doc.Email,
		Phone:               doc.Phone,
		Address:             doc.Address,
		Company:             doc.Company,
		ProfilePicture:      doc.ProfilePicture,
		QuestionsAndAnswers: answers,
		Referrals:           referrals,
		Status:              domain.Status(doc.Status),
		EmailSent:           doc.EmailSent,
		SubmittedAt:         doc.SubmittedAt,
		CompletedAt:         doc.CompletedAt,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

// mapSurveyToDocument writes the domain record into its persisted shape,
// assigning ids to freshly appended referrals as a side effect.
func mapSurveyToDocument(survey *domain.Survey, id primitive.ObjectID) (SurveyDocument, error) {
	answers := make([]QuestionAnswerDocument, 0, len(survey.QuestionsAndAnswers))
	for _, qa := range survey.QuestionsAndAnswers {
		answers = append(answers, QuestionAnswerDocument{
			QuestionID:   qa.QuestionID,
			Question:     qa.Question,
			QuestionType: string(qa.QuestionType),
			Answer:       qa.Answer,
		})
	}

	referrals := make([]ReferralDocument, 0, len(survey.Referrals))
	for i, ref := range survey.Referrals {
		var refID primitive.ObjectID
		if ref.ID != "" {
			parsed, err := primitive.ObjectIDFromHex(ref.ID)
			if err != nil {
				return SurveyDocument{}, err
			}
			refID = parsed
		} else {
			refID = primitive.NewObjectID()
			survey.Referrals[i].ID = refID.Hex()
		}
		referrals = append(referrals, ReferralDocument{
			ID:          refID,
			Name:        ref.Name,
			Email:       ref.Email,
			SubmittedAt: ref.SubmittedAt,
		})
	}

	return SurveyDocument{
		ID:                  id,
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
	}, nil
}
