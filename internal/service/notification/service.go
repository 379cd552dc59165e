package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jwalitptl/optorecord-api/internal/email"
	"github.com/jwalitptl/optorecord-api/pkg/logger"
	"github.com/jwalitptl/optorecord-api/pkg/messaging"
	"github.com/jwalitptl/optorecord-api/pkg/metrics"
)

const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentRequested = "appointment.requested"
	EventAppointmentUpdated   = "appointment.updated"
	EventAppointmentDeleted   = "appointment.deleted"

	dateLayout  = "Monday, January 2, 2006 at 3:04 PM"
	sendTimeout = 30 * time.Second
)

var subjects = map[string]string{
	EventAppointmentCreated:   "Appointment scheduled",
	EventAppointmentRequested: "Appointment requested",
	EventAppointmentUpdated:   "Appointment updated",
	EventAppointmentDeleted:   "Appointment cancelled",
}

// Notifier turns published appointment events into e-mails for both
// participants. A nil sender makes it log what it would have sent.
type Notifier struct {
	sender  email.Service
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNotifier(sender email.Service, log *logger.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{
		sender:  sender,
		logger:  log.WithFields(map[string]interface{}{"worker_id": "notifier"}),
		metrics: m,
	}
}

// Run consumes channel until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context, broker messaging.Broker, channel string) error {
	n.logger.Info("Notifier started", "channel", channel)
	return messaging.Consume(ctx, broker, channel, n.Handle, n.logger.ZL)
}

// Handle processes one raw broker message. Events other than appointment
// events are ignored.
func (n *Notifier) Handle(ctx context.Context, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("malformed event message")
	}

	msg := gjson.ParseBytes(raw)
	eventType := msg.Get("type").String()
	subject, ok := subjects[eventType]
	if !ok {
		return nil
	}

	data := msg.Get("payload.data")
	notice := appointmentNotice{
		patientName:   fullName(data.Get("patient_fname").String(), data.Get("patient_lname").String()),
		physicianName: fullName(data.Get("physician_fname").String(), data.Get("physician_lname").String()),
		date:          formatDate(data.Get("appointment_date").String()),
		reason:        data.Get("reason").String(),
		status:        data.Get("status").String(),
	}

	var recipients []string
	for _, path := range []string{"patient_email", "physician_email"} {
		if addr := data.Get(path).String(); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		n.logger.Warn("Appointment event has no recipients", "event_type", eventType, "event_id", msg.Get("id").String())
		n.count(eventType, "skipped")
		return nil
	}

	mail := &email.Message{
		To:      recipients,
		Subject: subject,
		Body:    notice.body(eventType),
	}

	if n.sender == nil {
		n.logger.Info("SMTP disabled, notification not sent",
			"event_type", eventType,
			"recipients", strings.Join(recipients, ","),
			"subject", subject,
		)
		n.count(eventType, "logged")
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, mail); err != nil {
		n.count(eventType, "failed")
		return fmt.Errorf("failed to send %s notification: %w", eventType, err)
	}

	n.count(eventType, "sent")
	n.logger.Debug("Notification sent", "event_type", eventType, "recipients", len(recipients))
	return nil
}

func (n *Notifier) count(eventType, status string) {
	if n.metrics == nil {
		return
	}
	n.metrics.NotificationsSent.WithLabelValues(eventType, status).Inc()
}

type appointmentNotice struct {
	patientName   string
	physicianName string
	date          string
	reason        string
	status        string
}

func (a appointmentNotice) body(eventType string) string {
	var b strings.Builder

	switch eventType {
	case EventAppointmentCreated:
		fmt.Fprintf(&b, "An appointment for %s with Dr. %s has been scheduled for %s.\n", a.patientName, a.physicianName, a.date)
	case EventAppointmentRequested:
		fmt.Fprintf(&b, "%s has requested an appointment with Dr. %s on %s. The request is awaiting confirmation.\n", a.patientName, a.physicianName, a.date)
	case EventAppointmentUpdated:
		fmt.Fprintf(&b, "The appointment for %s with Dr. %s has been updated. It is now on %s.\n", a.patientName, a.physicianName, a.date)
	case EventAppointmentDeleted:
		fmt.Fprintf(&b, "The appointment for %s with Dr. %s on %s has been cancelled.\n", a.patientName, a.physicianName, a.date)
	}

	if a.reason != "" {
		fmt.Fprintf(&b, "\nReason: %s\n", a.reason)
	}
	if a.status != "" && eventType != EventAppointmentDeleted {
		fmt.Fprintf(&b, "Status: %s\n", a.status)
	}
	return b.String()
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func formatDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format(dateLayout)
}
