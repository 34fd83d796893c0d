package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apierr "address-autocomplete/pkg/errors"
)

// subsystemTag identifies this lookup path in host API errors.
const subsystemTag = "user-settings"

// UserRecord is the raw host platform record for one user. Fields arrive
// unmapped; the service resolves the numeric locale id.
type UserRecord struct {
	ID          string `json:"id"`
	UILocaleID  int    `json:"uiLocaleId"`
	FullName    string `json:"fullName,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// HostClient retrieves user records from the host platform web API.
type HostClient interface {
	RetrieveUser(ctx context.Context, id string) (UserRecord, error)
}

// HTTPHostClient is the concrete binding against the host platform.
type HTTPHostClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewHTTPHostClient(baseURL, apiKey string, timeout time.Duration) *HTTPHostClient {
	return &HTTPHostClient{baseURL: baseURL, apiKey: apiKey, httpc: &http.Client{Timeout: timeout}}
}

type hostErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPHostClient) RetrieveUser(ctx context.Context, id string) (UserRecord, error) {
	reqURL := fmt.Sprintf("%s/api/users/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return UserRecord{}, apierr.NewHostAPI(apierr.CodeUnknown, 0, subsystemTag, err.Error(), err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return UserRecord{}, apierr.NewHostAPI(apierr.CodeUnknown, 0, subsystemTag, err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body hostErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		code := body.Error.Code
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		msg := body.Error.Message
		if msg == "" {
			msg = "user record retrieval rejected"
		}
		return UserRecord{}, apierr.NewHostAPI(code, resp.StatusCode, subsystemTag, msg, nil)
	}

	var rec UserRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return UserRecord{}, apierr.NewHostAPI(apierr.CodeUnknown, resp.StatusCode, subsystemTag, "decode user record: "+err.Error(), err)
	}
	return rec, nil
}

var _ HostClient = (*HTTPHostClient)(nil)
