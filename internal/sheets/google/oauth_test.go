package google

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const installedClient = `{"installed":{"client_id":"client-id","client_secret":"client-secret",` +
	`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",` +
	`"redirect_uris":["http://localhost"]}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig([]byte(installedClient), "http://localhost:8085/callback")
	require.NoError(t, err)
	assert.Equal(t, "client-id", cfg.ClientID)
	assert.Equal(t, "client-secret", cfg.ClientSecret)
	assert.Equal(t, "http://localhost:8085/callback", cfg.RedirectURL)
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/spreadsheets")

	_, err = OAuthConfig([]byte(`{}`), "")
	assert.Error(t, err)
}

func TestAuthorizedUserJSON(t *testing.T) {
	cfg := &oauth2.Config{ClientID: "id", ClientSecret: "secret"}

	b, err := AuthorizedUserJSON(cfg, &oauth2.Token{AccessToken: "a", RefreshToken: "r"})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]string{
		"type":          "authorized_user",
		"client_id":     "id",
		"client_secret": "secret",
		"refresh_token": "r",
	}, got)

	_, err = AuthorizedUserJSON(cfg, &oauth2.Token{AccessToken: "a"})
	assert.Error(t, err)
	_, err = AuthorizedUserJSON(cfg, nil)
	assert.Error(t, err)
}
