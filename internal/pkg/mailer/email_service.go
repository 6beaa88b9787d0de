package mailer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

var ErrMailerDisabled = errors.New("mailer: SMTP is not configured")

type IEmailService interface {
	Enabled() bool
	SendTranscriptExport(toEmail, displayName, filename string, data []byte) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

// NewEmailService returns a mailer that reports Enabled() == false when the
// host is empty; sends then fail with ErrMailerDisabled.
func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	var d *gomail.Dialer
	if host != "" {
		d = gomail.NewDialer(host, port, username, password)
	}
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) Enabled() bool {
	return s.dialer != nil
}

func (s *emailService) SendTranscriptExport(toEmail, displayName, filename string, data []byte) error {
	if !s.Enabled() {
		return ErrMailerDisabled
	}

	greeting := "Hi there"
	if displayName != "" {
		greeting = "Hi " + displayName
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your chat history export")
	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s,</h2>
			<p>Your conversations are attached as <b>%s</b>.</p>
			<p>If you didn't request this export, you can ignore this email.</p>
		</div>
	`, greeting, filename))
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}))

	return s.dialer.DialAndSend(m)
}
