package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleService_RedirectURLCarriesState(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/cb", []string{"email"})

	state, err := svc.GenerateState()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	u, err := url.Parse(svc.RedirectURL(state))
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}

func TestGoogleService_FetchUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"g-1","email":"ann@example.com","verified_email":true,"name":"Ann"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := &GoogleServiceImpl{
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	info, err := svc.FetchUser(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, GoogleInformation{GoogleID: "g-1", Email: "ann@example.com", VerifiedEmail: true, Name: "Ann"}, info)
}
