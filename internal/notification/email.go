package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/hireloop/interview-service/internal/domain"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	// BaseURL is the public URL candidates open the interview link against.
	BaseURL string
}

// EmailService sends interview access links over SMTP. One attempt per call.
type EmailService struct {
	config EmailConfig
}

func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config}
}

// SendInterviewInvite emails the candidate their access link.
func (s *EmailService) SendInterviewInvite(_ context.Context, c *domain.Candidate, session *domain.InterviewSession) error {
	link := fmt.Sprintf("%s/interview/%s", s.config.BaseURL, session.Token)

	var window string
	if session.ScheduledStart != nil && session.ScheduledEnd != nil {
		window = fmt.Sprintf(`<p>Your interview window is %s to %s (UTC).</p>`,
			session.ScheduledStart.UTC().Format(time.RFC1123),
			session.ScheduledEnd.UTC().Format(time.RFC1123))
	} else {
		window = fmt.Sprintf(`<p>This link is valid until %s (UTC).</p>`,
			session.ExpiresAt.UTC().Format(time.RFC1123))
	}

	subject := "Your Interview Invitation"
	body := fmt.Sprintf(`<html><body>
		<h2>Interview Invitation</h2>
		<p>Hello %s,</p>
		<p>You have been invited to an interview.</p>
		<p><a href="%s">Click here to start your interview</a></p>
		<p>Or copy this link to your browser: %s</p>
		%s
	</body></html>`, c.Name, link, link, window)
	return s.sendEmail(c.Email, subject, body)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	return smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg))
}
