// Package mailer implements the verification-code dispatch channel.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/devifer12/TableGenie/internal/platform/config"
	"github.com/devifer12/TableGenie/internal/registration/verifier"
	"github.com/devifer12/TableGenie/pkg/platform/circuit"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// SMTPSender delivers verification codes over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender constructs a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(_ context.Context, address, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", address)
	msg.SetHeader("Subject", "Your TableGenie verification code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your TableGenie verification code is %s.\n\nIt expires in 30 minutes. If you did not request it, ignore this email.\n", code))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// GuardedSender wraps a sender with a circuit breaker. While the breaker is
// open, Send fails fast with sentinel.ErrUnavailable instead of dialing a
// relay that keeps timing out; registration stays resumable the whole time.
type GuardedSender struct {
	next    verifier.Sender
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewGuardedSender wraps next with a breaker. Five consecutive failures trip
// it; one success closes it again.
func NewGuardedSender(next verifier.Sender, logger *slog.Logger) *GuardedSender {
	return &GuardedSender{
		next:    next,
		breaker: circuit.New("smtp"),
		logger:  logger,
	}
}

// Send attempts delivery even while the breaker is open; that attempt is the
// recovery probe. An open-circuit failure surfaces as ErrUnavailable so the
// caller can treat it as dependency-down rather than a per-message error.
func (s *GuardedSender) Send(ctx context.Context, address, code string) error {
	wasOpen := s.breaker.IsOpen()

	if err := s.next.Send(ctx, address, code); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "smtp circuit opened", "error", err)
		}
		if wasOpen {
			return fmt.Errorf("smtp circuit open: %w", sentinel.ErrUnavailable)
		}
		return err
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "smtp circuit closed")
	}
	return nil
}

// LogSender writes codes to the log instead of sending mail. For local
// development without an SMTP server; never for production.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, address, code string) error {
	s.logger.InfoContext(ctx, "verification code dispatched",
		"email", address,
		"code", code,
	)
	return nil
}
