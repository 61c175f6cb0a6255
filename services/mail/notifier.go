package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"staycation/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var sentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "staycation_mail_sent_total",
	Help: "Transactional emails by template and outcome",
}, []string{"template", "outcome"})

const dateFormat = "Mon, 02 Jan 2006"

type templateData struct {
	Name         string
	Link         string
	BookingID    uint
	PropertyName string
	CheckIn      string
	CheckOut     string
	Nights       int
	Guests       int
	TotalPrice   string
	Deadline     string
	Reason       string
}

// Notifier renders transactional emails and hands them to a Mailer.
type Notifier struct {
	mailer  Mailer
	baseURL string
	tmpl    *template.Template
	log     *zap.Logger
}

func NewNotifier(mailer Mailer, baseURL string, log *zap.Logger) (*Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{mailer: mailer, baseURL: strings.TrimRight(baseURL, "/"), tmpl: tmpl, log: log}, nil
}

func (n *Notifier) send(ctx context.Context, name, to, subject string, data templateData) error {
	var buf bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		sentTotal.WithLabelValues(name, "error").Inc()
		n.log.Error("render mail", zap.String("template", name), zap.Error(err))
		return err
	}
	if err := n.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String()}); err != nil {
		sentTotal.WithLabelValues(name, "error").Inc()
		n.log.Warn("send mail", zap.String("template", name), zap.String("to", to), zap.Error(err))
		return err
	}
	sentTotal.WithLabelValues(name, "ok").Inc()
	return nil
}

func (n *Notifier) SendVerification(ctx context.Context, user models.User, token string) error {
	return n.send(ctx, "verification", user.Email, "Verify your email", templateData{
		Name: user.Name,
		Link: fmt.Sprintf("%s/verify-email?token=%s", n.baseURL, token),
	})
}

func (n *Notifier) SendPasswordReset(ctx context.Context, user models.User, token string) error {
	return n.send(ctx, "reset_password", user.Email, "Reset your password", templateData{
		Name: user.Name,
		Link: fmt.Sprintf("%s/reset-password?token=%s", n.baseURL, token),
	})
}

func (n *Notifier) bookingData(b *models.Booking) templateData {
	data := templateData{
		BookingID:  b.ID,
		CheckIn:    b.CheckIn.Format(dateFormat),
		CheckOut:   b.CheckOut.Format(dateFormat),
		Nights:     b.Nights,
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice.StringFixed(2),
		Reason:     b.CancelReason,
		Link:       fmt.Sprintf("%s/bookings/%d", n.baseURL, b.ID),
	}
	if b.User != nil {
		data.Name = b.User.Name
	}
	if b.Property != nil {
		data.PropertyName = b.Property.Name
	}
	if b.PaymentDeadline != nil {
		data.Deadline = b.PaymentDeadline.UTC().Format(time.RFC1123)
	}
	return data
}

func (n *Notifier) sendBooking(ctx context.Context, name, subject string, b *models.Booking) error {
	if b.User == nil {
		return fmt.Errorf("booking %d has no guest loaded", b.ID)
	}
	return n.send(ctx, name, b.User.Email, fmt.Sprintf(subject, b.ID), n.bookingData(b))
}

func (n *Notifier) SendBookingCreated(ctx context.Context, b *models.Booking) error {
	return n.sendBooking(ctx, "booking_created", "Booking #%d created, awaiting payment", b)
}

func (n *Notifier) SendPaymentConfirmed(ctx context.Context, b *models.Booking) error {
	return n.sendBooking(ctx, "payment_confirmed", "Booking #%d confirmed", b)
}

func (n *Notifier) SendPaymentRejected(ctx context.Context, b *models.Booking) error {
	return n.sendBooking(ctx, "payment_rejected", "Payment for booking #%d was rejected", b)
}

func (n *Notifier) SendBookingCancelled(ctx context.Context, b *models.Booking) error {
	return n.sendBooking(ctx, "booking_cancelled", "Booking #%d cancelled", b)
}

func (n *Notifier) SendCheckInReminder(ctx context.Context, b *models.Booking) error {
	return n.sendBooking(ctx, "checkin_reminder", "Check-in tomorrow for booking #%d", b)
}
