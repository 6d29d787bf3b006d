// Package mail entrega as mensagens de verificação de conta.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/japama/watercontract/internal/apperr"
	"github.com/japama/watercontract/internal/config"
)

// ErrDeliveryFailure indica falha de transporte no envio.
var ErrDeliveryFailure = apperr.Dependency("DELIVERY_FAILURE", "Could not send email")

// Message é um e-mail HTML pronto para envio.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender define o canal de entrega de mensagens.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender envia mensagens via SMTP.
type SMTPSender struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender cria o remetente SMTP.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send entrega a mensagem; falhas de transporte viram ErrDeliveryFailure.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrDeliveryFailure.Wrap(fmt.Errorf("destinatário vazio"))
	}
	if err := ctx.Err(); err != nil {
		return ErrDeliveryFailure.Wrap(err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return ErrDeliveryFailure.Wrap(fmt.Errorf("smtp: %w", err))
	}
	return nil
}

// LogSender apenas registra a mensagem; usado sem SMTP configurado.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.Warn().Str("to", msg.To).Str("subject", msg.Subject).Msg("smtp não configurado; e-mail não enviado")
	return nil
}

// NewSender escolhe SMTP quando configurado e LogSender caso contrário.
func NewSender(cfg config.SMTPConfig, logger zerolog.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return LogSender{Logger: logger}
}
