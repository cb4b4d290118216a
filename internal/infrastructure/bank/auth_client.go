package bank

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/pkcs12"

	"github.com/imobia/backend/internal/domain/boleto"
)

// Timeouts controls the two HTTP channels to the bank. Token acquisition is
// short-lived; resource calls tolerate slower bank-side processing.
type Timeouts struct {
	TokenConnect    time.Duration
	Token           time.Duration
	ResourceConnect time.Duration
	Resource        time.Duration
}

// DefaultTimeouts matches the bank's published client guidance.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		TokenConnect:    10 * time.Second,
		Token:           30 * time.Second,
		ResourceConnect: 15 * time.Second,
		Resource:        60 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.TokenConnect <= 0 {
		t.TokenConnect = d.TokenConnect
	}
	if t.Token <= 0 {
		t.Token = d.Token
	}
	if t.ResourceConnect <= 0 {
		t.ResourceConnect = d.ResourceConnect
	}
	if t.Resource <= 0 {
		t.Resource = d.Resource
	}
	return t
}

// Response is the raw outcome of one bank call: HTTP status, the body as
// received and, when the body is JSON, its parsed form.
type Response struct {
	StatusCode int
	Body       string
	Data       map[string]interface{}
}

// AuthClient owns the authenticated mTLS channel to the bank: OAuth2
// client-credentials tokens (cached on the credential row) and the signed
// HTTP requests to the collection API.
type AuthClient struct {
	creds    boleto.CredentialRepository
	logger   *zap.Logger
	timeouts Timeouts

	// transportFactory builds the mTLS round tripper for a credential.
	// Overridden in tests to skip the client certificate.
	transportFactory func(cred *boleto.Credential) (http.RoundTripper, error)

	mu         sync.Mutex
	transports map[uuid.UUID]http.RoundTripper
}

// NewAuthClient creates the bank auth client.
func NewAuthClient(creds boleto.CredentialRepository, logger *zap.Logger, timeouts Timeouts) *AuthClient {
	return &AuthClient{
		creds:            creds,
		logger:           logger,
		timeouts:         timeouts.withDefaults(),
		transportFactory: mtlsTransport,
		transports:       make(map[uuid.UUID]http.RoundTripper),
	}
}

// Token returns a usable access token for the credential, refreshing and
// persisting it when the cached one is absent or inside the safety margin.
func (c *AuthClient) Token(ctx context.Context, cred *boleto.Credential) (string, error) {
	now := time.Now()
	if cred.TokenValid(now) {
		return cred.AccessToken, nil
	}

	if err := cred.Validate(now); err != nil {
		return "", err
	}

	transport, err := c.transportFor(cred)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cred.ClientID)
	form.Set("client_secret", cred.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.EffectiveAuthURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("bank: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Transport: transport, Timeout: c.timeouts.Token}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bank: token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("bank: failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var data map[string]interface{}
		_ = json.Unmarshal(body, &data)
		return "", fmt.Errorf("bank: authentication failed (HTTP %d): %s", resp.StatusCode, ExtractErrorMessage(data))
	}

	var token struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
		TokenType   string      `json:"token_type"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("bank: failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("bank: token response carried no access_token")
	}

	expiresIn := 3600
	if v, err := token.ExpiresIn.Int64(); err == nil && v > 0 {
		expiresIn = int(v)
	}

	cred.SetToken(token.AccessToken, expiresIn, now)
	if err := c.creds.Save(ctx, cred); err != nil {
		// The token still works for this run; only the cache is lost.
		c.logger.Warn("failed to persist bank token cache",
			zap.String("credential_id", cred.ID.String()),
			zap.Error(err))
	}

	c.logger.Info("bank token refreshed",
		zap.String("credential_id", cred.ID.String()),
		zap.Int("expires_in", expiresIn))

	return token.AccessToken, nil
}

// Request performs an authenticated call against the collection API. The
// path is appended to the credential's resource base URL. A non-2xx status
// is not an error here: callers inspect Response.StatusCode and decide.
func (c *AuthClient) Request(ctx context.Context, cred *boleto.Credential, method, path string, payload interface{}) (*Response, error) {
	token, err := c.Token(ctx, cred)
	if err != nil {
		return nil, err
	}

	transport, err := c.transportFor(cred)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("bank: failed to marshal request: %w", err)
		}
		reqBody = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, cred.EffectiveAPIURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("bank: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if cred.ClientID != "" {
		req.Header.Set("X-Application-Key", cred.ClientID)
	}

	client := &http.Client{Transport: transport, Timeout: c.timeouts.Resource}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bank: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bank: failed to read response: %w", err)
	}

	response := &Response{StatusCode: resp.StatusCode, Body: string(body)}
	if len(body) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			response.Data = data
		}
	}
	return response, nil
}

func (c *AuthClient) transportFor(cred *boleto.Credential) (http.RoundTripper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.transports[cred.ID]; ok {
		return t, nil
	}
	t, err := c.transportFactory(cred)
	if err != nil {
		return nil, err
	}
	c.transports[cred.ID] = t
	return t, nil
}

// mtlsTransport loads the credential's PKCS#12 bundle and builds a transport
// presenting it as the client certificate.
func mtlsTransport(cred *boleto.Credential) (http.RoundTripper, error) {
	p12Data, err := os.ReadFile(cred.CertPath)
	if err != nil {
		return nil, fmt.Errorf("bank: failed to read certificate %s: %w", cred.CertPath, err)
	}

	blocks, err := pkcs12.ToPEM(p12Data, cred.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("bank: failed to decode certificate: %w", err)
	}

	var pemData []byte
	for _, block := range blocks {
		pemData = append(pemData, pem.EncodeToMemory(block)...)
	}

	certificate, err := tls.X509KeyPair(pemData, pemData)
	if err != nil {
		return nil, fmt.Errorf("bank: failed to load client certificate: %w", err)
	}

	return &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{certificate},
			MinVersion:   tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout: DefaultTimeouts().ResourceConnect,
		}).DialContext,
	}, nil
}
