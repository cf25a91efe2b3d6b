// Package mailer dispatches confirmation emails. Dispatch is advisory:
// every failure, including missing SMTP configuration, is reported as a
// boolean outcome and never as an error to the caller.
package mailer

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/km0-cafe/restaurant-service/internal/config"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/qr"
)

// Dispatcher is what services depend on; tests swap in a recorder.
type Dispatcher interface {
	SendReservationConfirmation(res *models.Reservation) bool
	SendDeliveryConfirmation(d *models.Delivery, recipient, name string) bool
}

type Mailer struct {
	cfg config.SMTP
	log *zap.Logger

	// send is swappable for tests; defaults to a real SMTP dial.
	send func(m *gomail.Message) error
}

func New(cfg config.SMTP, log *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, log: log}
	m.send = func(msg *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		return d.DialAndSend(msg)
	}
	return m
}

func (m *Mailer) configured() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// SendReservationConfirmation renders and sends the reservation email
// with the QR payload embedded as an inline image, so it survives mail
// clients that block remote content.
func (m *Mailer) SendReservationConfirmation(res *models.Reservation) bool {
	if !m.configured() {
		m.log.Warn("smtp not configured, skipping reservation confirmation",
			zap.String("reservation_id", res.ID.String()))
		return false
	}

	png, err := qr.PNG(res.QRCode, 256)
	if err != nil {
		m.log.Warn("failed to render qr image", zap.Error(err))
		return false
	}

	var b strings.Builder
	b.WriteString("<h1>Reservation Confirmation</h1>")
	fmt.Fprintf(&b, "<p>Dear %s %s,</p>", res.FirstName, res.LastName)
	b.WriteString("<p>Your reservation has been confirmed:</p><ul>")
	fmt.Fprintf(&b, "<li>Type: %s</li>", res.Type)
	if res.Type == models.ReservationEvent && res.EventType != nil {
		fmt.Fprintf(&b, "<li>Event Type: %s</li>", *res.EventType)
	}
	fmt.Fprintf(&b, "<li>Date: %s</li>", res.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "<li>Time: %s</li>", res.Time)
	fmt.Fprintf(&b, "<li>Number of Guests: %d</li>", res.NumberOfGuests)
	b.WriteString("</ul>")
	b.WriteString(`<p>Please present this QR code upon arrival:</p>`)
	b.WriteString(`<img src="cid:qr.png" alt="Reservation QR Code" />`)
	b.WriteString("<p>Thank you for choosing KM0 restaurant cafe!</p>")

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", res.ContactEmail)
	msg.SetHeader("Subject", "Reservation Confirmation")
	msg.SetBody("text/html", b.String())
	msg.Embed("qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(png)
		return err
	}))

	if err := m.send(msg); err != nil {
		m.log.Warn("failed to send reservation confirmation",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
		return false
	}

	return true
}

// SendDeliveryConfirmation renders and sends the delivery order email.
func (m *Mailer) SendDeliveryConfirmation(d *models.Delivery, recipient, name string) bool {
	if !m.configured() {
		m.log.Warn("smtp not configured, skipping delivery confirmation",
			zap.String("delivery_id", d.ID.String()))
		return false
	}
	if recipient == "" {
		return false
	}

	var b strings.Builder
	b.WriteString("<h1>Delivery Confirmation</h1>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", name)
	b.WriteString("<p>Your delivery has been confirmed:</p><ul>")
	fmt.Fprintf(&b, "<li>Delivery Date: %s</li>", d.DeliveryDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "<li>Delivery Time: %s</li>", d.DeliveryTime)
	fmt.Fprintf(&b, "<li>Total Amount: $%.2f</li>", d.TotalAmount)
	fmt.Fprintf(&b, "<li>Delivery Fee: $%.2f</li>", d.DeliveryFee)
	b.WriteString("</ul><p>Delivery Address:</p>")
	fmt.Fprintf(&b, "<p>%s<br>%s, %s %s</p>", d.Street, d.City, d.State, d.ZipCode)
	b.WriteString("<p>Thank you for your order!</p>")

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", "Delivery Confirmation")
	msg.SetBody("text/html", b.String())

	if err := m.send(msg); err != nil {
		m.log.Warn("failed to send delivery confirmation",
			zap.String("delivery_id", d.ID.String()),
			zap.Error(err))
		return false
	}

	return true
}
