package public

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vrtmanagement/feedback-system/internal/survey/application"
)

// Handler wires the public HTTP endpoints to the application services.
type Handler struct {
	logger     *zap.Logger
	lifecycle  *application.LifecycleService
	queries    *application.QueryService
	emailBatch *application.EmailBatchService
	blobs      application.BlobStore
	cronSecret string
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger     *zap.Logger
	Lifecycle  *application.LifecycleService
	Queries    *application.QueryService
	EmailBatch *application.EmailBatchService
	Blobs      application.BlobStore
	CronSecret string
}

// NewHandler constructs the public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:     logger,
		lifecycle:  cfg.Lifecycle,
		queries:    cfg.Queries,
		emailBatch: cfg.EmailBatch,
		blobs:      cfg.Blobs,
		cronSecret: cfg.CronSecret,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/userdetails", h.userDetailsCreateHandler())
	r.Get("/userdetails", h.userDetailsListHandler())
	r.Post("/survey", h.surveySubmitHandler())
	r.Get("/survey", h.surveyListHandler())
	r.Post("/referrals", h.referralCreateHandler())
	r.Get("/referrals", h.referralListHandler())
	r.Post("/upload", h.uploadHandler())
	r.Delete("/upload", h.uploadDeleteHandler())
	r.Get("/cron/sendEmail", h.cronSendEmailHandler())
}
