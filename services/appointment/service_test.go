package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/services/access"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"
	"github.com/kapostolos1/estia-app/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t,
		&business.Business{}, &business.Profile{},
		&subscription.Subscription{}, &entitlement.Entitlement{},
		&Appointment{},
	)

	require.NoError(t, db.Create(&business.Business{ID: "biz-1", Name: "Cut & Go", OwnerID: "user-1"}).Error)
	require.NoError(t, db.Create(&business.Profile{ID: "user-1", BusinessID: "biz-1", Role: business.RoleOwner}).Error)

	cfg := &config.Config{}
	cfg.Access.FetchTimeout = 5 * time.Second

	mgr := access.NewManager(cfg,
		entitlement.NewRepository(entitlement.RepositoryParams{DB: db}),
		subscription.NewRepository(subscription.RepositoryParams{DB: db}),
	)
	t.Cleanup(mgr.Close)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &fixture{
		db:  db,
		svc: NewService(db, node, mgr, business.NewResolver(db)),
	}
}

func (f *fixture) setPaidUntil(t *testing.T, until time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&subscription.Subscription{
		BusinessID: "biz-1",
		OwnerID:    "user-1",
		PaidUntil:  &until,
	}).Error)
}

func validRequest() CreateRequest {
	return CreateRequest{
		Customer: "Maria",
		Service:  "haircut",
		StartsAt: time.Now().Add(24 * time.Hour),
	}
}

func TestCreateWithActiveSubscription(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(30*24*time.Hour))

	appt, err := f.svc.Create(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "biz-1", appt.BusinessID)
	assert.Equal(t, "user-1", appt.CreatedBy)
	assert.Equal(t, appt.StartsAt.Add(defaultDuration), appt.EndsAt)
}

func TestCreateBlockedWhenExpired(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(-30*24*time.Hour))

	_, err := f.svc.Create(context.Background(), "user-1", validRequest())

	require.Error(t, err)
	assert.Equal(t, errutil.StatusForbidden, errutil.CodeOf(err))
	assert.Contains(t, err.Error(), "subscription has expired")

	var n int64
	require.NoError(t, f.db.Model(&Appointment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateAllowedInGrace(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(-2*time.Hour))

	_, err := f.svc.Create(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
}

func TestCreateAllowedWithoutSubscriptionRows(t *testing.T) {
	f := newFixture(t)

	// No rows at all: the permissive default never blocks creation.
	_, err := f.svc.Create(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(24*time.Hour))

	req := validRequest()
	req.EndsAt = req.StartsAt.Add(-time.Hour)

	_, err := f.svc.Create(context.Background(), "user-1", req)

	require.Error(t, err)
	assert.Equal(t, errutil.StatusBadRequest, errutil.CodeOf(err))
}

func TestCreateWithoutBusiness(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "stranger", validRequest())

	require.Error(t, err)
	assert.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))
}

func TestListFiltersByRange(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(24*time.Hour))

	base := time.Now().Add(time.Hour).Truncate(time.Second)
	for _, offset := range []time.Duration{0, 48 * time.Hour, 96 * time.Hour} {
		req := validRequest()
		req.StartsAt = base.Add(offset)
		_, err := f.svc.Create(context.Background(), "user-1", req)
		require.NoError(t, err)
	}

	rows, err := f.svc.List(context.Background(), "user-1", base.Add(24*time.Hour), base.Add(72*time.Hour))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, base.Add(48*time.Hour).Unix(), rows[0].StartsAt.Unix())
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.setPaidUntil(t, time.Now().Add(24*time.Hour))

	appt, err := f.svc.Create(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), "user-1", appt.ID))

	err = f.svc.Cancel(context.Background(), "user-1", appt.ID)
	require.Error(t, err)
	assert.Equal(t, errutil.StatusNotFound, errutil.CodeOf(err))
}
