package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultScope is the push-delivery capability requested for every token.
const DefaultScope = "https://www.googleapis.com/auth/actions.fulfillment.conversation"

// Tokens are refreshed this long before they actually expire.
const expirySlack = time.Minute

// Credentials is the service account used to authenticate against the push
// delivery API.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadCredentials reads a service account key file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if c.ClientEmail == "" || c.PrivateKey == "" || c.TokenURI == "" {
		return nil, fmt.Errorf("credentials file %s missing client_email, private_key, or token_uri", path)
	}
	return &c, nil
}

// TokenSource exchanges a signed JWT assertion for a bearer access token
// and caches it until shortly before expiry. Acquisition failures are
// returned to the caller; there is no retry here.
type TokenSource struct {
	creds      *Credentials
	scope      string
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenSource(creds *Credentials, scope string) *TokenSource {
	if scope == "" {
		scope = DefaultScope
	}
	return &TokenSource{
		creds:      creds,
		scope:      scope,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Token returns a valid bearer token, fetching a fresh one when the cached
// token is absent or close to expiry.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Until(ts.expiry) > expirySlack {
		return ts.token, nil
	}

	token, expiresIn, err := ts.fetch(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return token, nil
}

func (ts *TokenSource) fetch(ctx context.Context) (string, int, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.creds.PrivateKey))
	if err != nil {
		return "", 0, fmt.Errorf("parse private key: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": ts.scope,
		"aud":   ts.creds.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", 0, fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, "POST", ts.creds.TokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, fmt.Errorf("token endpoint returned no access token")
	}

	return body.AccessToken, body.ExpiresIn, nil
}
