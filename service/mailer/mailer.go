package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends practice notification emails over SMTP. Callers fire sends in
// goroutines and log failures; a mail error never fails the parent request.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

func NewFromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("SMTP not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// SendBookingReceived acknowledges a new booking request.
func (m *Mailer) SendBookingReceived(to, date, timeSlot string) error {
	body := fmt.Sprintf("We received your appointment request for %s at %s. We will be in touch once it is reviewed.", date, timeSlot)
	return m.Send(to, "Appointment request received", body)
}

// SendStatusUpdate notifies a client that their appointment changed status.
func (m *Mailer) SendStatusUpdate(to, status, date, timeSlot string) error {
	var body string
	switch status {
	case "confirmed":
		body = fmt.Sprintf("Your appointment on %s at %s has been confirmed. We look forward to seeing you.", date, timeSlot)
	case "canceled":
		body = fmt.Sprintf("Your appointment on %s at %s has been canceled. Please book again at your convenience.", date, timeSlot)
	case "rejected":
		body = fmt.Sprintf("We are unable to accommodate your appointment request for %s at %s. Please choose another time.", date, timeSlot)
	default:
		body = fmt.Sprintf("Your appointment on %s at %s is now %s.", date, timeSlot, status)
	}
	return m.Send(to, "Appointment update", body)
}

// SendPasswordReset emails a reset token for an owner-portal account. The
// account ID is included because the confirm endpoint is addressed by it.
func (m *Mailer) SendPasswordReset(to string, userID uint, token string) error {
	body := fmt.Sprintf("Your password reset code for account %d is: %s. It expires in 15 minutes. Ignore this email if you did not request a reset.", userID, token)
	return m.Send(to, "Password reset", body)
}
