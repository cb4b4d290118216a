package bank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imobia/backend/internal/domain/boleto"
	"github.com/imobia/backend/internal/domain/shared"
)

type fakeCredentialRepo struct {
	saved int32
}

func (r *fakeCredentialRepo) FindByID(ctx context.Context, id uuid.UUID) (*boleto.Credential, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCredentialRepo) FindDefault(ctx context.Context) (*boleto.Credential, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeCredentialRepo) FindAllActive(ctx context.Context) ([]*boleto.Credential, error) {
	return nil, nil
}

func (r *fakeCredentialRepo) Save(ctx context.Context, cred *boleto.Credential) error {
	atomic.AddInt32(&r.saved, 1)
	return nil
}

func testAuthClient(t *testing.T, repo *fakeCredentialRepo) *AuthClient {
	t.Helper()
	client := NewAuthClient(repo, zap.NewNop(), Timeouts{})
	client.transportFactory = func(*boleto.Credential) (http.RoundTripper, error) {
		return http.DefaultTransport, nil
	}
	return client
}

func testCredential(authURL, apiURL string) *boleto.Credential {
	certExpiry := time.Now().AddDate(1, 0, 0)
	return &boleto.Credential{
		BaseEntity:    shared.NewBaseEntity(),
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		CertPath:      "/tmp/test-cert.p12",
		CertExpiresAt: &certExpiry,
		Covenant:      "1234567",
		Environment:   boleto.EnvironmentSandbox,
		AuthURL:       authURL,
		APIURL:        apiURL,
		Active:        true,
	}
}

func TestTokenAcquisitionAndCaching(t *testing.T) {
	var tokenCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   900,
			"token_type":   "Bearer",
		})
	}))
	defer server.Close()

	repo := &fakeCredentialRepo{}
	client := testAuthClient(t, repo)
	cred := testCredential(server.URL, "")

	token, err := client.Token(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.saved), "refreshed token persisted")

	// Second call served from cache, no extra round trip.
	token, err = client.Token(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestTokenRefreshInsideSafetyMargin(t *testing.T) {
	var tokenCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-new",
			"expires_in":   900,
		})
	}))
	defer server.Close()

	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential(server.URL, "")
	// Cached token with less validity left than the safety margin.
	cred.SetToken("tok-old", 120, time.Now())

	token, err := client.Token(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestTokenRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
	}))
	defer server.Close()

	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential(server.URL, "")

	_, err := client.Token(context.Background(), cred)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_client")
}

func TestTokenValidatesCredentialFirst(t *testing.T) {
	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential("http://unused", "")
	cred.ClientSecret = ""

	_, err := client.Token(context.Background(), cred)
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CREDENTIAL_INCOMPLETE", derr.Code)
}

func TestRequestCarriesAuthHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-1", "expires_in": 900})
	})
	mux.HandleFunc("/api/workspaces/default/bank_slips", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "client-id", r.Header.Get("X-Application-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "slip-1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential(server.URL+"/token", server.URL+"/api")

	resp, err := client.Request(context.Background(), cred, http.MethodPost, "/workspaces/default/bank_slips", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "slip-1", resp.Data["id"])
}

func TestRequestReturnsNonOKStatusWithoutError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-1", "expires_in": 900})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "dueDate invalida"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testAuthClient(t, &fakeCredentialRepo{})
	cred := testCredential(server.URL+"/token", server.URL+"/api")

	resp, err := client.Request(context.Background(), cred, http.MethodPost, "/workspaces/default/bank_slips", nil)
	require.NoError(t, err, "bank rejections are data, not transport errors")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "dueDate invalida", ExtractErrorMessage(resp.Data))
}
