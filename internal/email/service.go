package email

import (
	"bytes"
	"context"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/homecare-api/pkg/logger"
)

// Message is a plain text mail to a single recipient.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Build renders m as a MIME message.
func (m Message) Build() *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	return msg
}

type Service interface {
	Send(ctx context.Context, m Message) error
}

// LogService hands messages to a gomail sender that only logs them. No
// network connection is made.
type LogService struct {
	logger *logger.Logger
	sender gomail.Sender
}

func NewLogService(log *logger.Logger) *LogService {
	if log == nil {
		log = logger.Nop()
	}
	s := &LogService{logger: log}
	s.sender = gomail.SendFunc(s.deliver)
	return s
}

func (s *LogService) deliver(from string, to []string, msg io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	s.logger.Info("email delivered", "from", from, "to", to, "bytes", buf.Len())
	s.logger.Debug("email content", "mime", buf.String())
	return nil
}

func (s *LogService) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return gomail.Send(s.sender, m.Build())
}
