package reminders

import (
	"context"
	"time"

	"github.com/kapostolos1/estia-app/pkg/repository"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/subscription"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The reminder window brackets the 24h mark. It is two hours wide so an
// hourly scan cannot step over it.
const (
	windowMin = 23 * time.Hour
	windowMax = 25 * time.Hour
)

// Mailer delivers the renewal reminder email.
type Mailer interface {
	SendRenewalReminder(ctx context.Context, toEmail, toName string, endsAt time.Time) error
}

type Service struct {
	subs     *subscription.Repository
	profiles repository.Repository[business.Profile]
	mailer   Mailer
}

func NewService(db *gorm.DB, subs *subscription.Repository, mailer Mailer) *Service {
	return &Service{
		subs:     subs,
		profiles: repository.ProvideStore[business.Profile](db),
		mailer:   mailer,
	}
}

// Run scans every subscription and emails owners whose access expires in
// roughly 24 hours. At most one reminder is sent per expiry timestamp: a
// renewal moves endsAt forward and re-arms the reminder, a re-run does not.
// Per-row failures are logged and skipped so one bad row cannot starve the
// rest of the batch. Returns the number of reminders sent.
func (s *Service) Run(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.subs.All(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range rows {
		endsAt := sub.EndsAt()
		if endsAt == nil {
			continue
		}

		remaining := endsAt.Sub(now)
		if remaining < windowMin || remaining > windowMax {
			continue
		}

		if sub.ReminderSentForEndsAt != nil && sub.ReminderSentForEndsAt.Equal(*endsAt) {
			continue
		}

		prof, err := s.profiles.FindOne(ctx, &business.Profile{ID: sub.OwnerID})
		if err != nil {
			zap.L().Warn("failed to load owner profile for reminder",
				zap.String("business_id", sub.BusinessID),
				zap.Error(err),
			)
			continue
		}
		if prof == nil || prof.Email == "" {
			zap.L().Warn("skipping reminder, owner has no email",
				zap.String("business_id", sub.BusinessID),
			)
			continue
		}

		if err := s.mailer.SendRenewalReminder(ctx, prof.Email, prof.FullName, *endsAt); err != nil {
			zap.L().Warn("failed to send renewal reminder",
				zap.String("business_id", sub.BusinessID),
				zap.Error(err),
			)
			continue
		}

		// The idempotency mark is written after the send; a crash between
		// the two risks a duplicate email, never a missed one.
		if err := s.subs.MarkReminderSent(ctx, sub.BusinessID, *endsAt); err != nil {
			zap.L().Error("failed to mark reminder sent",
				zap.String("business_id", sub.BusinessID),
				zap.Error(err),
			)
			continue
		}

		sent++
	}

	zap.L().Info("renewal reminder run finished",
		zap.Int("scanned", len(rows)),
		zap.Int("sent", sent),
	)
	return sent, nil
}
