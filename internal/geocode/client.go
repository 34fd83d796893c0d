package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apierr "address-autocomplete/pkg/errors"
	"address-autocomplete/pkg/logging"
)

// Client is the abstract search capability the pipeline depends on. The
// concrete provider binding stays behind this interface so the core is
// testable with fakes.
type Client interface {
	Search(ctx context.Context, req Request) ([]Result, error)
}

// HTTPClient talks to the one provider API shape this service supports:
// a fuzzy-search endpoint keyed by a subscription-key query parameter,
// returning a JSON results envelope.
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     *logging.ComponentLogger
}

func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, log *logging.Logger) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
	if log != nil {
		c.log = log.WithComponent("geocode")
	}
	return c
}

// searchEnvelope mirrors the provider's success payload. Decoding happens
// through typed structs at this boundary; nothing downstream inspects raw
// JSON shapes.
type searchEnvelope struct {
	Results []Result `json:"results"`
}

// providerError mirrors the provider's error payload.
type providerError struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Target  string   `json:"target"`
		Details []string `json:"details"`
	} `json:"error"`
}

// Search performs one fuzzy search call. Non-success responses become typed
// *errors.APIError values tagged with the geocoder source; they are never
// retried here.
func (c *HTTPClient) Search(ctx context.Context, req Request) ([]Result, error) {
	params := url.Values{}
	params.Set("api-version", "1.0")
	params.Set("subscription-key", c.apiKey)
	params.Set("query", req.Query)
	if req.Language != "" {
		params.Set("language", req.Language)
	}
	if req.CountrySet != "" {
		params.Set("countrySet", req.CountrySet)
	}
	if req.Limit > 0 {
		params.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Lat != nil && req.Lon != nil {
		params.Set("lat", strconv.FormatFloat(*req.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*req.Lon, 'f', -1, 64))
		if req.Radius > 0 {
			params.Set("radius", strconv.Itoa(req.Radius))
		}
	}
	if req.EntityType != "" {
		params.Set("entityType", req.EntityType)
	}
	if req.ExtendedPostalCodes {
		params.Set("extendedPostalCodesFor", "PAD,Addr,POI")
	}

	reqURL := fmt.Sprintf("%s/search/fuzzy/json?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apierr.WrapUnknown(err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		if c.log != nil {
			c.log.Error("search request failed", err)
		}
		return nil, apierr.WrapUnknown(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		_ = json.NewDecoder(resp.Body).Decode(&pe)
		code := pe.Error.Code
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		msg := pe.Error.Message
		if msg == "" {
			msg = "search request rejected"
		}
		ae := apierr.NewGeocoder(code, resp.StatusCode, msg)
		ae.Target = pe.Error.Target
		ae.Details = pe.Error.Details
		if c.log != nil {
			c.log.Error("search upstream error", ae, logging.Int("status", resp.StatusCode))
		}
		return nil, ae
	}

	var env searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apierr.WrapUnknown(fmt.Errorf("decode search payload: %w", err))
	}
	return env.Results, nil
}

var _ Client = (*HTTPClient)(nil)
