package digikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// OAuthMetadataKey is the metadata key holding the token record.
const OAuthMetadataKey = "DIGIKEY_OAUTH"

const (
	tokenPath     = "/v1/oauth2/token"
	refreshLeeway = 60 * time.Second
)

// TokenRecord is the persisted OAuth state. Expiry fields are unix seconds.
type TokenRecord struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	ExpiresAt             int64  `json:"expires_at"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

func (t TokenRecord) valid() bool {
	return t.AccessToken != "" &&
		t.TokenType != "" &&
		t.RefreshToken != "" &&
		t.ExpiresAt >= 0 &&
		t.RefreshTokenExpiresAt >= 0
}

func (c *Client) accessToken(ctx context.Context) (TokenRecord, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	raw, ok, err := c.tokens.Load(ctx, OAuthMetadataKey)
	if err != nil {
		return TokenRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load digikey oauth token")
	}
	if !ok {
		c.logError(ctx, "no digikey oauth token in metadata", nil, nil)
		return TokenRecord{}, authError("No OAuth token found in metadata. %s", unfixableMsg)
	}

	var current TokenRecord
	if err := json.Unmarshal(raw, &current); err != nil || !current.valid() {
		c.logError(ctx, "invalid digikey oauth data in metadata", nil, err)
		return TokenRecord{}, authError("Invalid OAuth data in metadata. %s", unfixableMsg)
	}

	soon := c.now().Add(refreshLeeway).Unix()
	if current.ExpiresAt < soon {
		return c.refresh(ctx, current, soon)
	}
	return current, nil
}

func (c *Client) refresh(ctx context.Context, current TokenRecord, soon int64) (TokenRecord, error) {
	if c.logg != nil {
		c.logg.Info(ctx, "refreshing digikey oauth token")
	}
	if current.RefreshTokenExpiresAt < soon {
		c.logError(ctx, "digikey refresh token has expired", nil, nil)
		return TokenRecord{}, authError("Refresh token has expired. %s", unfixableMsg)
	}

	conf := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	httpCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.TokenSource(httpCtx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		c.logError(ctx, "failed to refresh digikey oauth token", nil, err)
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return TokenRecord{}, authError("Failed to authenticate with DigiKey API. Check your credentials or other potential fix: %s", unfixableMsg)
		}
		return TokenRecord{}, authError("Failed to refresh token: %v", err)
	}

	expiresIn, okExpires := extraSeconds(tok.Extra("expires_in"))
	refreshExpiresIn, okRefresh := extraSeconds(tok.Extra("refresh_token_expires_in"))
	if !okExpires || !okRefresh || tok.AccessToken == "" || tok.RefreshToken == "" {
		return TokenRecord{}, authError("Failed to parse response from DigiKey API. This is a bug")
	}

	now := c.now().Unix()
	next := TokenRecord{
		AccessToken:           tok.AccessToken,
		TokenType:             tok.Type(),
		ExpiresAt:             now + expiresIn,
		RefreshToken:          tok.RefreshToken,
		RefreshTokenExpiresAt: now + refreshExpiresIn,
	}
	if next.ExpiresAt <= now || next.RefreshTokenExpiresAt <= now {
		return TokenRecord{}, authError("Unexpected error: Failed to refresh token: new token expires at %d", next.ExpiresAt)
	}

	// The used refresh token is now invalid, so both tokens are stored.
	if err := c.tokens.Save(ctx, OAuthMetadataKey, next); err != nil {
		return TokenRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save digikey oauth token")
	}
	return next, nil
}

func extraSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// String hides the tokens in logs.
func (t TokenRecord) String() string {
	return fmt.Sprintf("TokenRecord{type=%s expires_at=%d refresh_expires_at=%d}", t.TokenType, t.ExpiresAt, t.RefreshTokenExpiresAt)
}
