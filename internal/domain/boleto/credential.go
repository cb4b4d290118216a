package boleto

import (
	"time"

	"github.com/imobia/backend/internal/domain/shared"
)

// Environment selects which bank endpoints a credential talks to.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// Default endpoints per environment. A credential may override both.
const (
	sandboxAuthURL    = "https://trust-sandbox.api.santander.com.br/auth/oauth/v2/token"
	sandboxAPIURL     = "https://trust-sandbox.api.santander.com.br/collection_bill_management/v2"
	productionAuthURL = "https://trust-open.api.santander.com.br/auth/oauth/v2/token"
	productionAPIURL  = "https://trust-open.api.santander.com.br/collection_bill_management/v2"
)

// tokenSafetyMargin is how much remaining validity a cached token must have
// before it is considered usable without a refresh.
const tokenSafetyMargin = 5 * time.Minute

// Credential holds one bank API configuration: OAuth client, mTLS
// certificate, covenant codes and the cached access token. One row per
// (bank account, environment) pair; only the token-refresh path mutates it.
type Credential struct {
	shared.BaseEntity
	Description string

	ClientID     string
	ClientSecret string
	WorkspaceID  string

	CertPath      string
	CertPassword  string
	CertExpiresAt *time.Time

	Covenant     string // covenant (convênio) code, 7 digits on the wire
	Wallet       string // wallet (carteira) code
	BankNumber   string // bank number sent on registration payloads
	ClientNumber string // beneficiary account code at the bank

	Environment Environment
	AuthURL     string
	APIURL      string

	Active bool

	// Cached OAuth token. Single live token per credential, overwritten on
	// refresh, last write wins.
	AccessToken    string
	TokenExpiresAt *time.Time
}

// EffectiveAuthURL resolves the token endpoint, falling back to the
// environment default when the credential has no override.
func (c *Credential) EffectiveAuthURL() string {
	if c.AuthURL != "" {
		return c.AuthURL
	}
	if c.Environment == EnvironmentProduction {
		return productionAuthURL
	}
	return sandboxAuthURL
}

// EffectiveAPIURL resolves the resource base URL.
func (c *Credential) EffectiveAPIURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	if c.Environment == EnvironmentProduction {
		return productionAPIURL
	}
	return sandboxAPIURL
}

// WorkspaceOrDefault returns the workspace path segment for resource calls.
func (c *Credential) WorkspaceOrDefault() string {
	if c.WorkspaceID == "" {
		return "default"
	}
	return c.WorkspaceID
}

// TokenValid reports whether the cached token can be used without a network
// call: present and with more than the safety margin of validity left.
func (c *Credential) TokenValid(now time.Time) bool {
	if c.AccessToken == "" || c.TokenExpiresAt == nil {
		return false
	}
	return c.TokenExpiresAt.After(now.Add(tokenSafetyMargin))
}

// SetToken caches a freshly acquired token with its absolute expiry.
func (c *Credential) SetToken(accessToken string, expiresIn int, now time.Time) {
	expiry := now.Add(time.Duration(expiresIn) * time.Second)
	c.AccessToken = accessToken
	c.TokenExpiresAt = &expiry
	c.UpdatedAt = now
}

// CertificateValid reports whether the mTLS certificate is not expired.
// Expiry here is advisory metadata kept on the credential, checked before
// use rather than enforced by the database.
func (c *Credential) CertificateValid(now time.Time) bool {
	if c.CertExpiresAt == nil {
		return false
	}
	return c.CertExpiresAt.After(now)
}

// Validate checks the credential is complete enough to authenticate.
func (c *Credential) Validate(now time.Time) error {
	if c.ClientID == "" {
		return shared.NewDomainError("CREDENTIAL_INCOMPLETE", "Client ID not configured")
	}
	if c.ClientSecret == "" {
		return shared.NewDomainError("CREDENTIAL_INCOMPLETE", "Client secret not configured")
	}
	if c.CertPath == "" {
		return shared.NewDomainError("CREDENTIAL_INCOMPLETE", "Certificate not configured")
	}
	if !c.CertificateValid(now) {
		return shared.NewDomainError("CERTIFICATE_EXPIRED", "Certificate expired")
	}
	return nil
}
