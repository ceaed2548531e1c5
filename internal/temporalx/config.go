package temporalx

import (
	"github.com/yungbote/careerbridge-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	// ReminderCron drives the weekly reminder schedule (standard 5-field cron, UTC).
	ReminderCron       string
	ReminderScheduleID string
	WorkerConcurrency  int
}

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "careerbridge"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "careerbridge"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		ReminderCron:       envutil.String("REMINDER_CRON", "0 9 * * 1"),
		ReminderScheduleID: envutil.String("REMINDER_SCHEDULE_ID", "careerbridge-weekly-reminders"),
		WorkerConcurrency:  envutil.Int("WORKER_CONCURRENCY", 4),
	}
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) mTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}
