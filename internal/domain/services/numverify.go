package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"phonetracer/internal/config"
	"phonetracer/pkg/logger"
)

// LiveCarrierInfo is the subset of a live lookup response used by the resolver
type LiveCarrierInfo struct {
	Valid       bool   `json:"valid"`
	Carrier     string `json:"carrier"`
	LineType    string `json:"line_type"`
	CountryCode string `json:"country_code"`
	Location    string `json:"location"`
}

// CarrierLookup resolves the current carrier of a number from a live source
type CarrierLookup interface {
	// Lookup returns nil info when the source does not recognise the number
	Lookup(ctx context.Context, e164 string) (*LiveCarrierInfo, error)
}

// NumVerifyClient queries the NumVerify validation API
type NumVerifyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewNumVerifyClient creates a NumVerify client
func NewNumVerifyClient(cfg config.NumVerifyConfig, log *logger.Logger) *NumVerifyClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = "http://apilayer.net/api/validate"
	}

	return &NumVerifyClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("numverify"),
	}
}

// Lookup validates a number against NumVerify
func (c *NumVerifyClient) Lookup(ctx context.Context, e164 string) (*LiveCarrierInfo, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("number", strings.TrimLeft(e164, "+"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("numverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("numverify returned status %d", resp.StatusCode)
	}

	var info LiveCarrierInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode numverify response: %w", err)
	}
	if !info.Valid {
		return nil, nil
	}

	c.logger.WithNumber(e164).Debug().
		Str("carrier", info.Carrier).
		Msg("numverify lookup completed")

	return &info, nil
}
