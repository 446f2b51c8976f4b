package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr             string
	MongoURI         string
	MongoDatabase    string
	SurveyCollection string
	ConnectTimeout   time.Duration
	AllowedOrigins   []string

	MediaDir     string
	MediaBaseURL string

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string

	CronSecret      string
	EmailGrace      time.Duration
	EmailBatchLimit int
	EmailQueueSize  int
	EmailWorkers    int

	LegacyValidation bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("mongo_uri", "mongodb://mongo:27017")
	v.SetDefault("mongo_db", "vrt-feedback")
	v.SetDefault("survey_collection", "surveys")
	v.SetDefault("mongo_connect_timeout", "10s")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("media_dir", "./media")
	v.SetDefault("media_base_url", "http://localhost:8080")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("email_from_name", "VRT Management Group")
	v.SetDefault("email_grace_period", "2m")
	v.SetDefault("email_batch_limit", 25)
	v.SetDefault("email_queue_size", 64)
	v.SetDefault("email_workers", 2)
	v.SetDefault("survey_legacy_validation", false)
}

// Load reads environment variables and returns a fully populated Config.
// Secrets (SMTP credentials, cron secret) have no defaults on purpose.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return Config{
		Addr:             v.GetString("http_addr"),
		MongoURI:         v.GetString("mongo_uri"),
		MongoDatabase:    v.GetString("mongo_db"),
		SurveyCollection: v.GetString("survey_collection"),
		ConnectTimeout:   v.GetDuration("mongo_connect_timeout"),
		AllowedOrigins:   splitList(v.GetString("allowed_origins")),

		MediaDir:     v.GetString("media_dir"),
		MediaBaseURL: v.GetString("media_base_url"),

		SMTPHost:      v.GetString("smtp_host"),
		SMTPPort:      v.GetInt("smtp_port"),
		SMTPUsername:  v.GetString("smtp_username"),
		SMTPPassword:  v.GetString("smtp_password"),
		EmailFrom:     v.GetString("email_from"),
		EmailFromName: v.GetString("email_from_name"),

		CronSecret:      v.GetString("cron_secret"),
		EmailGrace:      v.GetDuration("email_grace_period"),
		EmailBatchLimit: v.GetInt("email_batch_limit"),
		EmailQueueSize:  v.GetInt("email_queue_size"),
		EmailWorkers:    v.GetInt("email_workers"),

		LegacyValidation: v.GetBool("survey_legacy_validation"),
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return []string{"*"}
	}
	return values
}
