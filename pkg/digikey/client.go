package digikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/partsbin-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

const (
	defaultBaseURL              = "https://api.digikey.com"
	sandboxBaseURL              = "https://sandbox-api.digikey.com"
	defaultTimeout              = 30 * time.Second
	responseLogLimit      int64 = 2048
	productBarcodePath          = "Barcoding/v3/ProductBarcodes/"
	product2DBarcodePath        = "Barcoding/v3/Product2DBarcodes/"
	packListBarcodePath         = "Barcoding/v3/PackListBarcodes/"
	packList2DBarcodePath       = "Barcoding/v3/PackList2DBarcodes/"
	productDetailsPathFmt       = "products/v4/search/%s/productdetails"
)

var errClientIDRequired = errors.New("digikey client id is required")

// TokenStore persists the OAuth token record as raw JSON.
type TokenStore interface {
	Load(ctx context.Context, key string) (json.RawMessage, bool, error)
	Save(ctx context.Context, key string, value any) error
}

// Client talks to the DigiKey Barcoding and Product Information APIs.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	tokens       TokenStore
	logg         *logger.Logger
	now          func() time.Time

	// serialises refreshes; a refresh token is single-use
	tokenMu sync.Mutex
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithSandbox points the client at the DigiKey sandbox.
func WithSandbox(enabled bool) Option {
	return func(c *Client) {
		if enabled {
			c.baseURL = sandboxBaseURL
		}
	}
}

// WithLogger enables error logging of failed vendor calls.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a DigiKey client. Tokens are read from and written back to
// the provided store.
func NewClient(clientID, clientSecret string, tokens TokenStore, opts ...Option) (*Client, error) {
	trimmedID := strings.TrimSpace(clientID)
	if trimmedID == "" {
		return nil, errClientIDRequired
	}
	if tokens == nil {
		return nil, errors.New("digikey token store is required")
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      defaultBaseURL,
		clientID:     trimmedID,
		clientSecret: strings.TrimSpace(clientSecret),
		tokens:       tokens,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewFromConfig builds a client from the DigiKey config section. The sandbox
// host is used in the test environment unless a base URL is configured.
func NewFromConfig(cfg config.DigiKeyConfig, sandbox bool, tokens TokenStore, logg *logger.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClient(cfg.ClientID, cfg.ClientSecret, tokens,
		WithHTTPClient(&http.Client{Timeout: timeout}),
		WithSandbox(sandbox),
		WithBaseURL(cfg.BaseURL),
		WithLogger(logg),
	)
}

// GetItemBy1DBarcode resolves a linear product label. The barcode must be
// all digits.
func (c *Client) GetItemBy1DBarcode(ctx context.Context, barcode string) (*ProductBarcodeResponse, error) {
	code, err := clean1D(barcode)
	if err != nil {
		return nil, err
	}
	var out ProductBarcodeResponse
	if err := c.get(ctx, productBarcodePath+url.PathEscape(code), &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItemBy2DBarcode resolves a data matrix product label.
func (c *Client) GetItemBy2DBarcode(ctx context.Context, barcode string) (*Product2DBarcodeResponse, error) {
	var out Product2DBarcodeResponse
	if err := c.get(ctx, product2DBarcodePath+escape2D(barcode), &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPackListBy1DBarcode resolves a linear pack list label.
func (c *Client) GetPackListBy1DBarcode(ctx context.Context, barcode string) (*PackListBarcodeResponse, error) {
	code, err := clean1D(barcode)
	if err != nil {
		return nil, err
	}
	var out PackListBarcodeResponse
	if err := c.get(ctx, packListBarcodePath+url.PathEscape(code), &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPackListBy2DBarcode resolves a data matrix pack list label.
func (c *Client) GetPackListBy2DBarcode(ctx context.Context, barcode string) (*PackListBarcodeResponse, error) {
	var out PackListBarcodeResponse
	if err := c.get(ctx, packList2DBarcodePath+escape2D(barcode), &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProductDetails fetches full product data for a DigiKey part number.
func (c *Client) GetProductDetails(ctx context.Context, partNumber string) (*ProductDetails, error) {
	trimmed := strings.TrimSpace(partNumber)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "digikey part number is required")
	}
	var out ProductDetails
	if err := c.get(ctx, fmt.Sprintf(productDetailsPathFmt, url.PathEscape(trimmed)), &out, out.validate); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, dst any, validate func() error) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "digikey client not configured")
	}
	headers, err := c.headers(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apiError(0, err, "build digikey request")
	}
	req.Header = headers

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiError(0, err, "execute digikey request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiError(resp.StatusCode, err, "read digikey response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logError(ctx, "digikey returned an error", map[string]any{
			"status": resp.StatusCode,
			"url":    endpoint,
			"body":   truncate(body),
		}, nil)
		if resp.StatusCode == http.StatusNotFound {
			return notFoundError(path)
		}
		return apiError(resp.StatusCode, nil, fmt.Sprintf("DigiKey API returned an error: status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.logError(ctx, "failed to parse digikey response as json", map[string]any{"body": truncate(body)}, err)
		return apiError(resp.StatusCode, err, "Failed to parse response as json from DigiKey API.")
	}
	if err := validate(); err != nil {
		c.logError(ctx, "digikey response failed validation", map[string]any{
			"type": fmt.Sprintf("%T", dst),
			"body": truncate(body),
		}, err)
		return apiError(resp.StatusCode, err, "Failed to parse response from DigiKey API.")
	}
	return nil
}

func (c *Client) headers(ctx context.Context) (http.Header, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("X-DIGIKEY-Client-Id", c.clientID)
	h.Set("X-DIGIKEY-Locale-Site", "US")
	h.Set("X-DIGIKEY-Locale-Language", "en")
	h.Set("X-DIGIKEY-Locale-Currency", "USD")
	h.Set("Authorization", token.TokenType+" "+token.AccessToken)
	h.Set("Accept", "application/json")
	return h, nil
}

func (c *Client) logError(ctx context.Context, msg string, fields map[string]any, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Error(c.logg.WithFields(ctx, fields), msg, err)
}

func clean1D(barcode string) (string, error) {
	code := strings.TrimSpace(barcode)
	if code == "" || strings.IndexFunc(code, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "Barcode must be all digits, but got %s", code)
	}
	return code, nil
}

// escape2D swaps the ASCII record and group separators for their visible
// control pictures, which is what the barcoding API expects in the path.
func escape2D(barcode string) string {
	replaced := strings.NewReplacer("\u001e", "␞", "\u001d", "␝").Replace(barcode)
	return url.PathEscape(replaced)
}

// IsLinearBarcode reports whether a scanned code is a 1D product label.
func IsLinearBarcode(barcode string) bool {
	_, err := clean1D(barcode)
	return err == nil
}

func truncate(body []byte) string {
	if int64(len(body)) > responseLogLimit {
		return string(body[:responseLogLimit])
	}
	return string(body)
}
