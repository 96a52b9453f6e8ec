package jobs

import (
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type gocronLoggerAdapter struct {
	logger *zap.SugaredLogger
}

var _ gocron.Logger = (*gocronLoggerAdapter)(nil)

func (l *gocronLoggerAdapter) Debug(msg string, args ...any) {
	l.logger.Debugw(msg, args...)
}

func (l *gocronLoggerAdapter) Error(msg string, args ...any) {
	l.logger.Errorw(msg, args...)
}

func (l *gocronLoggerAdapter) Info(msg string, args ...any) {
	l.logger.Infow(msg, args...)
}

func (l *gocronLoggerAdapter) Warn(msg string, args ...any) {
	l.logger.Warnw(msg, args...)
}
