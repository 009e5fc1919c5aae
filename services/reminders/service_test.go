package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/subscription"
	"github.com/kapostolos1/estia-app/services/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendRenewalReminder(ctx context.Context, toEmail, toName string, endsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

type reminderFixture struct {
	db     *gorm.DB
	mailer *fakeMailer
	svc    *Service
	now    time.Time
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	db := testutil.NewTestDB(t, &business.Profile{}, &subscription.Subscription{})
	mailer := &fakeMailer{}

	return &reminderFixture{
		db:     db,
		mailer: mailer,
		svc:    NewService(db, subscription.NewRepository(subscription.RepositoryParams{DB: db}), mailer),
		now:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (f *reminderFixture) seed(t *testing.T, businessID, ownerID, email string, endsAt time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&business.Profile{ID: ownerID, Email: email, FullName: "Owner " + ownerID, BusinessID: businessID}).Error)
	require.NoError(t, f.db.Create(&subscription.Subscription{BusinessID: businessID, OwnerID: ownerID, PaidUntil: &endsAt}).Error)
}

func TestRunSendsInsideWindow(t *testing.T) {
	f := newReminderFixture(t)
	f.seed(t, "biz-1", "owner-1", "one@shop.gr", f.now.Add(24*time.Hour))
	f.seed(t, "biz-2", "owner-2", "two@shop.gr", f.now.Add(23*time.Hour+30*time.Minute))

	sent, err := f.svc.Run(context.Background(), f.now)

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"one@shop.gr", "two@shop.gr"}, f.mailer.sent)
}

func TestRunSkipsOutsideWindow(t *testing.T) {
	f := newReminderFixture(t)
	f.seed(t, "biz-early", "o1", "early@shop.gr", f.now.Add(48*time.Hour))
	f.seed(t, "biz-late", "o2", "late@shop.gr", f.now.Add(2*time.Hour))
	f.seed(t, "biz-past", "o3", "past@shop.gr", f.now.Add(-time.Hour))

	sent, err := f.svc.Run(context.Background(), f.now)

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.mailer.sent)
}

func TestRunIsIdempotentPerExpiry(t *testing.T) {
	f := newReminderFixture(t)
	f.seed(t, "biz-1", "owner-1", "one@shop.gr", f.now.Add(24*time.Hour))

	sent, err := f.svc.Run(context.Background(), f.now)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// A second scan inside the same window sends nothing.
	sent, err = f.svc.Run(context.Background(), f.now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.mailer.sent, 1)
}

func TestRunRearmsAfterRenewal(t *testing.T) {
	f := newReminderFixture(t)
	endsAt := f.now.Add(24 * time.Hour)
	f.seed(t, "biz-1", "owner-1", "one@shop.gr", endsAt)

	_, err := f.svc.Run(context.Background(), f.now)
	require.NoError(t, err)

	// Renewal pushes the expiry a month out; the next 24h approach gets a
	// fresh reminder.
	renewed := endsAt.Add(30 * 24 * time.Hour)
	require.NoError(t, f.db.Model(&subscription.Subscription{}).
		Where("business_id = ?", "biz-1").
		Update("paid_until", renewed).Error)

	sent, err := f.svc.Run(context.Background(), renewed.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, f.mailer.sent, 2)
}

func TestRunUsesLaterOfTrialAndPaid(t *testing.T) {
	f := newReminderFixture(t)

	trial := f.now.Add(24 * time.Hour)
	paid := f.now.Add(2 * time.Hour)
	require.NoError(t, f.db.Create(&business.Profile{ID: "owner-1", Email: "one@shop.gr", BusinessID: "biz-1"}).Error)
	require.NoError(t, f.db.Create(&subscription.Subscription{
		BusinessID:  "biz-1",
		OwnerID:     "owner-1",
		TrialEndsAt: &trial,
		PaidUntil:   &paid,
	}).Error)

	sent, err := f.svc.Run(context.Background(), f.now)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestRunSkipsOwnersWithoutEmail(t *testing.T) {
	f := newReminderFixture(t)
	f.seed(t, "biz-1", "owner-1", "", f.now.Add(24*time.Hour))

	sent, err := f.svc.Run(context.Background(), f.now)

	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestRunMailFailureDoesNotMarkSent(t *testing.T) {
	f := newReminderFixture(t)
	f.seed(t, "biz-1", "owner-1", "one@shop.gr", f.now.Add(24*time.Hour))
	f.mailer.err = errors.New("sendgrid 500")

	sent, err := f.svc.Run(context.Background(), f.now)
	require.NoError(t, err)
	assert.Zero(t, sent)

	// The mark was not written, so the next run retries the send.
	f.mailer.err = nil
	sent, err = f.svc.Run(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
