package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrtmanagement/feedback-system/internal/infrastructure/blob"
	"github.com/vrtmanagement/feedback-system/internal/survey/application"
	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

type stubRepo struct {
	mu      sync.Mutex
	surveys map[string]*domain.Survey
	nextID  int
	marked  []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{surveys: make(map[string]*domain.Survey)}
}

func copySurvey(s *domain.Survey) *domain.Survey {
	out := *s
	out.QuestionsAndAnswers = append([]domain.QuestionAnswer(nil), s.QuestionsAndAnswers...)
	out.Referrals = append([]domain.Referral(nil), s.Referrals...)
	return &out
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, application.NewNotFoundError("survey not found")
	}
	return copySurvey(s), nil
}

func (r *stubRepo) FindDraftByEmail(_ context.Context, email string) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.surveys {
		if s.Email == domain.NormalizeEmail(email) && s.Status == domain.StatusDraft {
			return copySurvey(s), nil
		}
	}
	return nil, application.NewNotFoundError("no draft survey found")
}

func (r *stubRepo) Find(_ context.Context, filter application.SurveyFilter) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Survey, 0)
	for _, s := range r.surveys {
		if filter.ID != "" && s.ID != filter.ID {
			continue
		}
		if filter.Email != "" && s.Email != filter.Email {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *copySurvey(s))
	}
	return out, nil
}

func (r *stubRepo) Insert(_ context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	survey.ID = fmt.Sprintf("survey-%d", r.nextID)
	now := time.Now().UTC()
	survey.CreatedAt = now
	survey.UpdatedAt = now
	r.surveys[survey.ID] = copySurvey(survey)
	return nil
}

func (r *stubRepo) Update(_ context.Context, survey *domain.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[survey.ID]; !ok {
		return application.NewNotFoundError("survey not found")
	}
	survey.UpdatedAt = time.Now().UTC()
	r.surveys[survey.ID] = copySurvey(survey)
	return nil
}

func (r *stubRepo) FindPendingEmail(_ context.Context, cutoff time.Time, limit int) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Survey, 0)
	for _, s := range r.surveys {
		if len(out) >= limit {
			break
		}
		if s.Status != domain.StatusSubmitted || s.EmailSent {
			continue
		}
		if s.SubmittedAt == nil || s.SubmittedAt.After(cutoff) {
			continue
		}
		out = append(out, *copySurvey(s))
	}
	return out, nil
}

func (r *stubRepo) MarkEmailSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return application.NewNotFoundError("survey not found")
	}
	s.EmailSent = true
	r.marked = append(r.marked, id)
	return nil
}

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) SendThankYou(_ context.Context, survey *domain.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, survey.Email)
	return nil
}

type testEnv struct {
	repo   *stubRepo
	sender *stubSender
	router chi.Router
}

func newTestEnv(t *testing.T, cronSecret string) *testEnv {
	t.Helper()

	repo := newStubRepo()
	sender := &stubSender{}

	store, err := blob.NewLocalStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	handler := NewHandler(Config{
		Lifecycle:  application.NewLifecycleService(repo, store, nil, nil, false),
		Queries:    application.NewQueryService(repo),
		EmailBatch: application.NewEmailBatchService(repo, sender, nil, 0, 25),
		Blobs:      store,
		CronSecret: cronSecret,
	})

	router := chi.NewRouter()
	handler.Register(router)

	return &testEnv{repo: repo, sender: sender, router: router}
}

func (e *testEnv) doJSON(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func answerPayloads(n int) []map[string]string {
	out := make([]map[string]string, 0, n)
	for i := 1; i <= n; i++ {
		item := map[string]string{
			"questionId": fmt.Sprintf("q%d", i),
			"question":   fmt.Sprintf("Question %d?", i),
			"answer":     "An answer",
		}
		if i == 15 {
			item["answer"] = ""
		}
		out = append(out, item)
	}
	return out
}

func TestSurveyFlow(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodPost, "/userdetails", map[string]string{
		"fullName": "Jane Doe",
		"email":    "Jane@X.com",
		"company":  "Acme",
		"phone":    "555-0100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	surveyID, _ := body["surveyId"].(string)
	require.NotEmpty(t, surveyID)

	survey, _ := body["survey"].(map[string]any)
	require.NotNil(t, survey)
	assert.Equal(t, "jane@x.com", survey["email"])
	assert.Equal(t, "draft", survey["status"])

	rec = env.doJSON(t, http.MethodPost, "/survey", map[string]any{
		"surveyId":            surveyID,
		"questionsAndAnswers": answerPayloads(14),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body = decodeBody(t, rec)
	assert.Equal(t, surveyID, body["surveyId"])
	assert.Equal(t, "jane@x.com", body["userEmail"])
	assert.Equal(t, "Jane Doe", body["fullName"])

	// The transition is one-way.
	rec = env.doJSON(t, http.MethodPost, "/survey", map[string]any{
		"surveyId":            surveyID,
		"questionsAndAnswers": answerPayloads(14),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/referrals", map[string]string{
		"surveyId": surveyID,
		"name":     "John Smith",
		"email":    "John@Other.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["totalReferrals"])
	referral, _ := body["referral"].(map[string]any)
	require.NotNil(t, referral)
	assert.Equal(t, "john@other.com", referral["email"])

	// Same address again, different case.
	rec = env.doJSON(t, http.MethodPost, "/referrals", map[string]string{
		"surveyId": surveyID,
		"name":     "John Smith",
		"email":    "JOHN@other.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/referrals?surveyId="+surveyID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body = decodeBody(t, rec)
	assert.Equal(t, float64(1), body["totalReferrals"])
	referrals, _ := body["referrals"].([]any)
	assert.Len(t, referrals, 1)
}

func TestUserDetailsValidation(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodPost, "/userdetails", map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/userdetails", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitWithoutDraftReturnsNotFound(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodPost, "/survey", map[string]any{
		"surveyId":            "survey-999",
		"questionsAndAnswers": answerPayloads(14),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitRejectsShortAnswerList(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodPost, "/survey", map[string]any{
		"email":               "jane@x.com",
		"questionsAndAnswers": answerPayloads(13),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSurveyListFiltersByEmail(t *testing.T) {
	env := newTestEnv(t, "")

	for _, email := range []string{"a@x.com", "b@x.com"} {
		rec := env.doJSON(t, http.MethodPost, "/userdetails", map[string]string{
			"fullName": "Jane Doe",
			"email":    email,
			"company":  "Acme",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.doJSON(t, http.MethodGet, "/survey?userEmail=A@x.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	surveys, _ := body["surveys"].([]any)
	require.Len(t, surveys, 1)
	first, _ := surveys[0].(map[string]any)
	assert.Equal(t, "a@x.com", first["email"])
}

func TestReferralListRequiresSurveyID(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodGet, "/referrals", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, contentType string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestUploadStoresImage(t *testing.T) {
	env := newTestEnv(t, "")

	buf, contentType := multipartUpload(t, "image/png")
	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	url, _ := body["url"].(string)
	assert.Contains(t, url, "/media/profile-pictures-")
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := newTestEnv(t, "")

	buf, contentType := multipartUpload(t, "application/pdf")
	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	env := newTestEnv(t, "")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("oldUrl", ""))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDeleteRequiresURL(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodDelete, "/upload", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCronRefusesWithoutConfiguredSecret(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.doJSON(t, http.MethodGet, "/cron/sendEmail", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCronRejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t, "sweep-secret")

	req := httptest.NewRequest(http.MethodGet, "/cron/sendEmail", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCronSweepSendsPendingEmails(t *testing.T) {
	env := newTestEnv(t, "sweep-secret")

	submitted := time.Now().UTC().Add(-time.Hour)
	pending := &domain.Survey{
		FullName:    "Jane Doe",
		Email:       "jane@x.com",
		Company:     "Acme",
		Status:      domain.StatusSubmitted,
		SubmittedAt: &submitted,
	}
	require.NoError(t, env.repo.Insert(context.Background(), pending))

	req := httptest.NewRequest(http.MethodGet, "/cron/sendEmail", nil)
	req.Header.Set("Authorization", "Bearer sweep-secret")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["processed"])
	assert.Equal(t, float64(1), body["sent"])
	assert.Equal(t, float64(0), body["failed"])

	assert.Equal(t, []string{"jane@x.com"}, env.sender.sent)
	assert.Equal(t, []string{pending.ID}, env.repo.marked)
}

func TestCronSweepReportsEmptyRun(t *testing.T) {
	env := newTestEnv(t, "sweep-secret")

	req := httptest.NewRequest(http.MethodGet, "/cron/sendEmail", nil)
	req.Header.Set("Authorization", "Bearer sweep-secret")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["processed"])
	assert.Equal(t, "No surveys to process", body["message"])
}
