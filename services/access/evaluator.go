package access

import (
	"fmt"
	"time"

	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"
)

const (
	// GracePeriod keeps access open for a fixed window after expiry so a
	// renewal hiccup does not lock the business out mid-day.
	GracePeriod = 8 * time.Hour

	// WarnWindow is the pre-expiry window in which the countdown ticker
	// raises a warning for active statuses.
	WarnWindow = 24 * time.Hour
)

const (
	expiredBannerText = "Your subscription has expired. Renew to keep adding new appointments."
	expiredInlineText = "Subscription expired"
)

func expiringText(remaining time.Duration) string {
	mins := int(remaining / time.Minute)
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("Subscription expires in %dh %02dm", mins/60, mins%60)
}

// Input carries exactly one source row per call. The controller evaluates
// the entitlement-derived and subscription-derived decisions separately and
// merges them afterwards.
type Input struct {
	Entitlement  *entitlement.Entitlement
	Subscription *subscription.Subscription
}

// Evaluate is the pure access evaluator: one source row plus "now" in, one
// Decision out. No I/O, no clock reads; identical inputs produce identical
// output.
func Evaluate(in Input, now time.Time) Decision {
	if in.Entitlement != nil {
		return evaluateEntitlement(in.Entitlement, now)
	}
	return evaluateSubscription(in.Subscription, now)
}

func evaluateEntitlement(ent *entitlement.Entitlement, now time.Time) Decision {
	kind := ent.Kind.Normalized()

	if kind == entitlement.KindLifetime {
		return Decision{Allowed: true, CanCreate: true, Status: StatusLifetime}
	}

	if kind.IsSubscription() {
		exp := subscription.ValidTime(ent.ExpiresAt)
		if exp == nil {
			// Cannot judge an expiry-less grant; stay permissive.
			return Unknown()
		}
		return timed(StatusPaid, *exp, now, expiredBannerText)
	}

	if kind == entitlement.KindGiftUntil {
		exp := subscription.ValidTime(ent.ExpiresAt)
		if exp == nil {
			return Decision{Allowed: true, CanCreate: true, Status: StatusGift}
		}
		return timed(StatusGift, *exp, now, expiredInlineText)
	}

	// Unknown kind: never lock out on data we don't understand.
	return Unknown()
}

func evaluateSubscription(sub *subscription.Subscription, now time.Time) Decision {
	if sub == nil {
		return Unknown()
	}

	endsAt := sub.EndsAt()
	if endsAt == nil {
		return Unknown()
	}

	status := StatusTrial
	if paid := subscription.ValidTime(sub.PaidUntil); paid != nil && !paid.Before(now) {
		status = StatusPaid
	}

	return timed(status, *endsAt, now, expiredBannerText)
}

// timed maps an expiry timestamp onto the active / grace / expired ladder.
// An expiry exactly at "now" is already on the grace path, not active.
func timed(activeStatus Status, endsAt time.Time, now time.Time, expiredText string) Decision {
	left := endsAt.Sub(now)

	if left > 0 {
		return Decision{
			Allowed:   true,
			CanCreate: true,
			Status:    activeStatus,
			EndsAt:    &endsAt,
			HoursLeft: ceilHours(left),
		}
	}

	if now.Before(endsAt.Add(GracePeriod)) {
		return Decision{
			Allowed:   true,
			CanCreate: true,
			Status:    StatusGrace,
			EndsAt:    &endsAt,
			WarnLevel: WarnInfo,
			WarnText:  expiredText,
		}
	}

	return Decision{
		Allowed:   false,
		CanCreate: false,
		Status:    StatusExpired,
		EndsAt:    &endsAt,
		WarnLevel: WarnInfo,
		WarnText:  expiredText,
	}
}

func ceilHours(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Hour - 1) / time.Hour)
}
