package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fxconvert/internal/domain"
	"io"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

const maxBodyBytes = 256 << 10

// FixerClient fetches the latest rate table from a fixer.io compatible API.
// The request URL is the configured base URL with the access key appended.
type FixerClient struct {
	http      *http.Client
	baseURL   string
	accessKey string
}

type apiError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

type apiResponse struct {
	Success *bool                      `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *apiError                  `json:"error"`
}

func (c *FixerClient) FetchLatest(ctx context.Context) (domain.RateTable, error) {
	u, err := url.Parse(c.baseURL + c.accessKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute rates request: %w", redactKey(err, c.accessKey))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d from rates provider: %s", resp.StatusCode, resp.Status)
	}

	var body apiResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	if body.Success != nil && !*body.Success {
		if body.Error != nil {
			return nil, fmt.Errorf("rates provider returned error %d (%s): %s", body.Error.Code, body.Error.Type, body.Error.Info)
		}
		return nil, errors.New("rates provider returned non-success result")
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates provider response: %w", domain.ErrEmptyRates)
	}

	return domain.RateTable(body.Rates), nil
}

// redactKey strips the access key from url.Error messages.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key != "" && errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: "<redacted>", Err: urlErr.Err}
	}
	return err
}

func NewFixerClient(httpClient *http.Client, baseURL, accessKey string) *FixerClient {
	return &FixerClient{http: httpClient, baseURL: baseURL, accessKey: accessKey}
}
