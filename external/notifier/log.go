package notifier

import (
	"context"

	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

// Log writes reports to the application log. Used when no chat destination is configured.
type Log struct {
	logger *logging.Logger
}

func NewLog(logger *logging.Logger) *Log {
	if logger == nil {
		logger = logging.Default()
	}
	return &Log{logger: logger.With("notifier", "log")}
}

func (l *Log) Name() string {
	return "log"
}

func (l *Log) Notify(ctx context.Context, text string) error {
	l.logger.InfoContext(ctx, "prediction report", "report", text)
	return nil
}
