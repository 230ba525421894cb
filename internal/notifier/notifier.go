// Package notifier emails the operator a summary after each generation run.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	domevents "github.com/amarfts/ph-scheduler/internal/events"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/events"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Notifier subscribes to run-completed events and sends the per-pharmacy
// outcome summary over SMTP. When SMTP is not configured it is inert.
type Notifier struct {
	cfg config.MailConfig
	log *logger.Logger
}

// New creates the notifier.
func New(cfg config.MailConfig, log *logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, log: log}
}

// Register subscribes the notifier to the event bus.
func (n *Notifier) Register(bus events.Bus) {
	bus.Subscribe(domevents.GenerationRunCompleted{}.EventName(), n)
}

// Handle processes bus events.
func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	completed, ok := event.(domevents.GenerationRunCompleted)
	if !ok {
		return nil
	}
	if !n.cfg.IsMailEnabled() {
		return nil
	}

	subject := fmt.Sprintf("Roster publication run %s", completed.StartDate)
	if err := n.send(ctx, subject, summarize(completed)); err != nil {
		n.log.Error("run summary email failed", "error", err)
		return err
	}

	n.log.Info("run summary email sent", "start_date", completed.StartDate)
	return nil
}

func (n *Notifier) send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(n.cfg.GetMailFrom()); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(n.cfg.GetMailTo()); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(n.cfg.GetSMTPHost(),
		gomail.WithPort(n.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(n.cfg.GetSMTPUsername()),
		gomail.WithPassword(n.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// summarize renders the outcome list as a plain-text report.
func summarize(completed domevents.GenerationRunCompleted) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generation run for %s\n\n", completed.StartDate)

	counts := map[string]int{}
	for _, outcome := range completed.Outcomes {
		counts[outcome.Status]++

		fmt.Fprintf(&b, "- %s: %s", outcome.Pharmacy, outcome.Status)
		if outcome.RadiusKm > 0 {
			fmt.Fprintf(&b, " (radius %d km)", outcome.RadiusKm)
		}
		if outcome.Reason != "" {
			fmt.Fprintf(&b, ": %s", outcome.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nscheduled: %d, skipped: %d, errors: %d\n",
		counts[domevents.OutcomeScheduled], counts[domevents.OutcomeSkipped],
		counts[domevents.OutcomeError])
	return b.String()
}

// Compile-time check that Notifier implements events.Handler.
var _ events.Handler = (*Notifier)(nil)
