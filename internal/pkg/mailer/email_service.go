package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendVerification(toEmail, name, token string) error
	SendResetToken(toEmail, token string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	apiBaseURL  string
	clientURL   string
}

// NewEmailService sends through SMTP. Verification links point at the API,
// reset links point at the client application.
func NewEmailService(host string, port int, username, password, senderName, apiBaseURL, clientURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		apiBaseURL:  apiBaseURL,
		clientURL:   clientURL,
	}
}

func (s *emailService) newMessage(toEmail, subject string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

func (s *emailService) SendVerification(toEmail, name, token string) error {
	verifyLink := fmt.Sprintf("%s/api/v1/users/verify/%s", s.apiBaseURL, token)

	m := s.newMessage(toEmail, "Verify your email address")
	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Please confirm your email address to start hosting and joining sessions.</p>
			<a href="%s" style="background-color: #6C3BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, name, verifyLink, verifyLink))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send verification to %s: %w", toEmail, err)
	}
	log.Printf("[MAILER] Verification sent to %s", toEmail)
	return nil
}

func (s *emailService) SendResetToken(toEmail, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password/%s", s.clientURL, token)

	m := s.newMessage(toEmail, "Reset Your Password")
	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password Reset Request</h2>
			<p>You requested to reset your password. Click the button below to proceed:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in 10 minutes.</p>
			<p>If you didn't request this, please ignore this email.</p>
		</div>
	`, resetLink, resetLink))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reset token to %s: %w", toEmail, err)
	}
	log.Printf("[MAILER] Reset token sent to %s", toEmail)
	return nil
}
