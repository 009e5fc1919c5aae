package verify

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/errutil"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const (
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	publisherAPIBase = "https://androidpublisher.googleapis.com/androidpublisher/v3"
	publisherScope   = "https://www.googleapis.com/auth/androidpublisher"

	stateActive      = "SUBSCRIPTION_STATE_ACTIVE"
	stateGracePeriod = "SUBSCRIPTION_STATE_IN_GRACE_PERIOD"
)

// Receipt is the verified state of a Play subscription purchase.
type Receipt struct {
	State      string
	ExpiryTime *time.Time
	ProductID  string
}

// Active reports whether the purchase currently grants access. Google's own
// grace period counts as active; our local grace window is layered on top.
func (r *Receipt) Active() bool {
	return r.State == stateActive || r.State == stateGracePeriod
}

// Verifier resolves a purchase token against the store's backend.
type Verifier interface {
	Verify(ctx context.Context, purchaseToken string) (*Receipt, error)
}

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// GoogleVerifier calls the Play Developer subscriptionsv2 API, minting
// short-lived access tokens from a service-account key.
type GoogleVerifier struct {
	packageName string
	email       string
	key         *rsa.PrivateKey
	tokenURL    string
	apiBase     string
	httpClient  *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewGoogleVerifier(cfg *config.Config) (*GoogleVerifier, error) {
	raw, err := os.ReadFile(cfg.Google.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	key, err := parseRSAKey(sa.PrivateKey)
	if err != nil {
		return nil, err
	}

	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}

	return &GoogleVerifier{
		packageName: cfg.Google.PackageName,
		email:       sa.ClientEmail,
		key:         key,
		tokenURL:    tokenURL,
		apiBase:     publisherAPIBase,
		httpClient:  &http.Client{Timeout: 12 * time.Second},
	}, nil
}

func parseRSAKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("service account key holds no PEM block")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		if key, err1 := x509.ParsePKCS1PrivateKey(block.Bytes); err1 == nil {
			return key, nil
		}
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("service account key is not RSA")
	}
	return key, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, purchaseToken string) (*Receipt, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, errutil.BadGateway("failed to authenticate with play api", err)
	}

	endpoint := fmt.Sprintf("%s/applications/%s/purchases/subscriptionsv2/tokens/%s",
		g.apiBase, url.PathEscape(g.packageName), url.PathEscape(purchaseToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errutil.Internal("failed to build play api request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errutil.BadGateway("play api unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return nil, errutil.NotFound("purchase token not found", nil)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, errutil.BadRequest("purchase token rejected", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, errutil.BadGateway(fmt.Sprintf("play api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var payload struct {
		SubscriptionState string `json:"subscriptionState"`
		LineItems         []struct {
			ProductID  string `json:"productId"`
			ExpiryTime string `json:"expiryTime"`
		} `json:"lineItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errutil.BadGateway("failed to decode play api response", err)
	}

	receipt := &Receipt{State: payload.SubscriptionState}
	if len(payload.LineItems) > 0 {
		receipt.ProductID = payload.LineItems[0].ProductID
		if raw := payload.LineItems[0].ExpiryTime; raw != "" {
			if exp, err := time.Parse(time.RFC3339, raw); err == nil {
				receipt.ExpiryTime = &exp
			}
		}
	}
	return receipt, nil
}

// accessToken exchanges a signed service-account assertion for a bearer
// token, caching it until shortly before expiry.
func (g *GoogleVerifier) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	if g.token != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		token := g.token
		g.mu.Unlock()
		return token, nil
	}
	g.mu.Unlock()

	assertion, err := g.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}

	g.mu.Lock()
	g.token = payload.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	g.mu.Unlock()

	return payload.AccessToken, nil
}

func (g *GoogleVerifier) signAssertion() (string, error) {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: g.key}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build jwt signer: %w", err)
	}

	now := time.Now()
	claims := jwt.Claims{
		Issuer:   g.email,
		Audience: jwt.Audience{g.tokenURL},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(time.Hour)),
	}

	return jwt.Signed(signer).
		Claims(claims).
		Claims(map[string]any{"scope": publisherScope}).
		Serialize()
}
