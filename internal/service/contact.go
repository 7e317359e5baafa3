package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/eventhub/internal/apperr"
	"github.com/Shivanand-hulikatti/eventhub/internal/mailer"
	"github.com/Shivanand-hulikatti/eventhub/internal/model"
)

// Mailer delivers one outbound message.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ContactService forwards contact form submissions to the site inbox.
type ContactService struct {
	mail  Mailer
	inbox string
	log   *slog.Logger
}

// NewContactService returns a ContactService delivering to inbox.
func NewContactService(mail Mailer, inbox string, log *slog.Logger) *ContactService {
	return &ContactService{mail: mail, inbox: inbox, log: log}
}

// Send relays req. Replies go to the submitter.
func (s *ContactService) Send(ctx context.Context, req model.ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || strings.TrimSpace(req.Message) == "" {
		return apperr.InvalidInput("All fields are required.")
	}
	if !isValidEmail(email) {
		return apperr.InvalidInput("Please provide a valid email address")
	}

	msg := mailer.Message{
		From:    s.inbox,
		To:      s.inbox,
		ReplyTo: email,
		Subject: "New Contact Form Submission from " + name,
		Body: fmt.Sprintf("You received a new message:\n\nName: %s\nEmail: %s\n\nMessage:\n%s",
			name, email, req.Message),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("send contact message", "error", err)
		return apperr.Internal("Failed to send the message. Please try again later.", err)
	}
	return nil
}
