// Package notify provides phoneAuth.CodeSender implementations.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoLogger is returned by LogSender when it has no logger.
var ErrNoLogger = errors.New("notify: nil logger")

// LogSender writes each code to a logger instead of sending an SMS. It is
// meant for development: the code is masked and logged at debug level.
type LogSender struct {
	logger logrus.FieldLogger
}

// NewLogSender returns a sender logging to logger.
func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, phone, code string) error {
	if s == nil || s.logger == nil {
		return ErrNoLogger
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"phone": maskDigits(phone, 3, 2),
		"code":  maskDigits(code, 2, 0),
	}).Debug("otp code delivered")
	return nil
}

// Func adapts a function to phoneAuth.CodeSender.
type Func func(ctx context.Context, phone, code string) error

func (f Func) SendCode(ctx context.Context, phone, code string) error {
	return f(ctx, phone, code)
}

func maskDigits(s string, head, tail int) string {
	if len(s) <= head+tail {
		return strings.Repeat("*", len(s))
	}
	return s[:head] + strings.Repeat("*", len(s)-head-tail) + s[len(s)-tail:]
}
