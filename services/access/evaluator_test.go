package access

import (
	"testing"
	"time"

	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) *time.Time { return &t }

func TestEvaluateNoRows(t *testing.T) {
	d := Evaluate(Input{}, now)

	assert.Equal(t, StatusUnknown, d.Status)
	assert.True(t, d.Allowed)
	assert.True(t, d.CanCreate)
}

func TestEvaluateLifetime(t *testing.T) {
	d := Evaluate(Input{Entitlement: &entitlement.Entitlement{Kind: "lifetime"}}, now)

	assert.Equal(t, StatusLifetime, d.Status)
	assert.True(t, d.Allowed)
	assert.True(t, d.CanCreate)
	assert.Nil(t, d.EndsAt)
}

func TestEvaluateSubscriptionKindEntitlement(t *testing.T) {
	t.Run("future expiry is paid", func(t *testing.T) {
		d := Evaluate(Input{Entitlement: &entitlement.Entitlement{
			Kind:      "sub",
			ExpiresAt: ts(now.Add(30 * time.Hour)),
		}}, now)

		assert.Equal(t, StatusPaid, d.Status)
		assert.True(t, d.CanCreate)
		assert.Equal(t, 30, d.HoursLeft)
	})

	t.Run("legacy kind name is accepted", func(t *testing.T) {
		d := Evaluate(Input{Entitlement: &entitlement.Entitlement{
			Kind:      "subscription",
			ExpiresAt: ts(now.Add(time.Hour)),
		}}, now)

		assert.Equal(t, StatusPaid, d.Status)
	})

	t.Run("missing expiry stays permissive", func(t *testing.T) {
		d := Evaluate(Input{Entitlement: &entitlement.Entitlement{Kind: "sub"}}, now)

		assert.Equal(t, StatusUnknown, d.Status)
		assert.True(t, d.Allowed)
	})
}

func TestEvaluateGift(t *testing.T) {
	t.Run("open ended gift", func(t *testing.T) {
		d := Evaluate(Input{Entitlement: &entitlement.Entitlement{Kind: "gift_until"}}, now)

		assert.Equal(t, StatusGift, d.Status)
		assert.True(t, d.CanCreate)
	})

	t.Run("timed gift follows the grace ladder", func(t *testing.T) {
		d := Evaluate(Input{Entitlement: &entitlement.Entitlement{
			Kind:      "gift_until",
			ExpiresAt: ts(now.Add(-2 * time.Hour)),
		}}, now)

		assert.Equal(t, StatusGrace, d.Status)
		assert.True(t, d.Allowed)
	})
}

func TestEvaluateUnknownKind(t *testing.T) {
	d := Evaluate(Input{Entitlement: &entitlement.Entitlement{
		Kind:      "mystery",
		ExpiresAt: ts(now.Add(-100 * time.Hour)),
	}}, now)

	assert.Equal(t, StatusUnknown, d.Status)
	assert.True(t, d.Allowed)
}

func TestEvaluateSubscriptionRow(t *testing.T) {
	t.Run("nil row is unknown", func(t *testing.T) {
		d := Evaluate(Input{Subscription: nil}, now)
		assert.Equal(t, StatusUnknown, d.Status)
	})

	t.Run("no usable timestamps is unknown", func(t *testing.T) {
		d := Evaluate(Input{Subscription: &subscription.Subscription{}}, now)
		assert.Equal(t, StatusUnknown, d.Status)
		assert.True(t, d.Allowed)
	})

	t.Run("pre-epoch timestamps are treated as absent", func(t *testing.T) {
		bogus := time.Date(1969, 1, 1, 0, 0, 0, 0, time.UTC)
		d := Evaluate(Input{Subscription: &subscription.Subscription{PaidUntil: &bogus}}, now)
		assert.Equal(t, StatusUnknown, d.Status)
	})

	t.Run("future trial", func(t *testing.T) {
		d := Evaluate(Input{Subscription: &subscription.Subscription{
			TrialEndsAt: ts(now.Add(48 * time.Hour)),
		}}, now)

		assert.Equal(t, StatusTrial, d.Status)
		assert.Equal(t, 48, d.HoursLeft)
	})

	t.Run("current paid period wins over trial label", func(t *testing.T) {
		d := Evaluate(Input{Subscription: &subscription.Subscription{
			TrialEndsAt: ts(now.Add(-240 * time.Hour)),
			PaidUntil:   ts(now.Add(100 * time.Hour)),
		}}, now)

		assert.Equal(t, StatusPaid, d.Status)
		require.NotNil(t, d.EndsAt)
		assert.Equal(t, now.Add(100*time.Hour), *d.EndsAt)
	})

	t.Run("ends at is the later of trial and paid", func(t *testing.T) {
		d := Evaluate(Input{Subscription: &subscription.Subscription{
			TrialEndsAt: ts(now.Add(72 * time.Hour)),
			PaidUntil:   ts(now.Add(10 * time.Hour)),
		}}, now)

		require.NotNil(t, d.EndsAt)
		assert.Equal(t, now.Add(72*time.Hour), *d.EndsAt)
	})
}

func TestGraceLadderBoundaries(t *testing.T) {
	sub := func(endsAt time.Time) Input {
		return Input{Subscription: &subscription.Subscription{PaidUntil: ts(endsAt)}}
	}

	t.Run("expiry exactly now is grace, not active", func(t *testing.T) {
		d := Evaluate(sub(now), now)

		assert.Equal(t, StatusGrace, d.Status)
		assert.True(t, d.Allowed)
		assert.True(t, d.CanCreate)
		assert.Equal(t, WarnInfo, d.WarnLevel)
	})

	t.Run("inside the grace window", func(t *testing.T) {
		d := Evaluate(sub(now.Add(-GracePeriod+time.Minute)), now)

		assert.Equal(t, StatusGrace, d.Status)
		assert.True(t, d.Allowed)
	})

	t.Run("grace boundary itself is expired", func(t *testing.T) {
		d := Evaluate(sub(now.Add(-GracePeriod)), now)

		assert.Equal(t, StatusExpired, d.Status)
		assert.False(t, d.Allowed)
		assert.False(t, d.CanCreate)
		assert.NotEmpty(t, d.WarnText)
	})

	t.Run("long expired", func(t *testing.T) {
		d := Evaluate(sub(now.Add(-30*24*time.Hour)), now)

		assert.Equal(t, StatusExpired, d.Status)
		assert.False(t, d.CanCreate)
	})
}

func TestCeilHours(t *testing.T) {
	assert.Equal(t, 0, ceilHours(-time.Hour))
	assert.Equal(t, 0, ceilHours(0))
	assert.Equal(t, 1, ceilHours(time.Minute))
	assert.Equal(t, 1, ceilHours(time.Hour))
	assert.Equal(t, 2, ceilHours(time.Hour+time.Minute))
}

func TestEvaluateIsPure(t *testing.T) {
	in := Input{Subscription: &subscription.Subscription{PaidUntil: ts(now.Add(5 * time.Hour))}}

	first := Evaluate(in, now)
	second := Evaluate(in, now)

	assert.Equal(t, first, second)
}
