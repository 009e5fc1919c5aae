package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/middleware"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"
	"github.com/kapostolos1/estia-app/services/testutil"

	"github.com/gin-gonic/gin"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mintToken(t *testing.T, subject string) string {
	t.Helper()

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte(testSecret)}, nil)
	require.NoError(t, err)

	raw, err := jwt.Signed(signer).Claims(jwt.Claims{
		Subject: subject,
		Expiry:  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).Serialize()
	require.NoError(t, err)
	return raw
}

func newHandlerFixture(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t,
		&business.Business{}, &business.Profile{},
		&subscription.Subscription{}, &entitlement.Entitlement{},
	)

	cfg := &config.Config{}
	cfg.Access.FetchTimeout = 5 * time.Second

	mgr := NewManager(cfg,
		entitlement.NewRepository(entitlement.RepositoryParams{DB: db}),
		subscription.NewRepository(subscription.RepositoryParams{DB: db}),
	)
	t.Cleanup(mgr.Close)

	engine := gin.New()
	engine.Use(middleware.Error())
	NewHandler(mgr, business.NewResolver(db)).RegisterRoutes(engine, testSecret)

	return engine, db
}

func doGet(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/access", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAccessEndpoint(t *testing.T) {
	engine, db := newHandlerFixture(t)

	require.NoError(t, db.Create(&business.Business{ID: "biz-1", OwnerID: "user-1"}).Error)
	require.NoError(t, db.Create(&business.Profile{ID: "user-1", BusinessID: "biz-1", Role: business.RoleOwner}).Error)

	paid := time.Now().Add(48 * time.Hour)
	require.NoError(t, db.Create(&subscription.Subscription{BusinessID: "biz-1", OwnerID: "user-1", PaidUntil: &paid}).Error)

	w := doGet(engine, mintToken(t, "user-1"))

	require.Equal(t, http.StatusOK, w.Code)

	var d Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, StatusPaid, d.Status)
	assert.True(t, d.Allowed)
	assert.Equal(t, 48, d.HoursLeft)
}

func TestAccessEndpointNoBusiness(t *testing.T) {
	engine, db := newHandlerFixture(t)
	require.NoError(t, db.Create(&business.Profile{ID: "user-1"}).Error)

	w := doGet(engine, mintToken(t, "user-1"))

	// No business context answers with the permissive default, not 404.
	require.Equal(t, http.StatusOK, w.Code)

	var d Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, StatusUnknown, d.Status)
	assert.True(t, d.Allowed)
}

func TestAccessEndpointRequiresToken(t *testing.T) {
	engine, _ := newHandlerFixture(t)

	w := doGet(engine, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessRefreshEndpoint(t *testing.T) {
	engine, db := newHandlerFixture(t)

	require.NoError(t, db.Create(&business.Business{ID: "biz-1", OwnerID: "user-1"}).Error)
	require.NoError(t, db.Create(&business.Profile{ID: "user-1", BusinessID: "biz-1", Role: business.RoleOwner}).Error)

	token := mintToken(t, "user-1")

	// First read: no rows yet, permissive unknown.
	w := doGet(engine, token)
	require.Equal(t, http.StatusOK, w.Code)
	var d Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	require.Equal(t, StatusUnknown, d.Status)

	// Purchase lands, client forces a refresh.
	paid := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Create(&subscription.Subscription{BusinessID: "biz-1", OwnerID: "user-1", PaidUntil: &paid}).Error)

	req := httptest.NewRequest(http.MethodPost, "/v1/access/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, StatusPaid, d.Status)
}
