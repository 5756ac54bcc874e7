package yatco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vipul43/yatco-sync/internal/normalizer"
)

const (
	DefaultBaseURL = "https://api.yatcoboss.com/api/v1"
	DefaultTimeout = 30 * time.Second

	activeVesselsPath = "/ForSale/vessel/activevesselmlsid"
	fullSpecsPath     = "/ForSale/Vessel/%d/Details/FullSpecsAll"

	maxErrorBody = 512
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// SetRateLimit caps outgoing requests per second; rps <= 0 disables limiting
func (c *Client) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Configured reports whether an API token is available
func (c *Client) Configured() bool {
	return c.token != ""
}

// ListActiveVesselIDs returns up to limit active vessel ids (all when limit is 0).
// Entries that are not positive integers are dropped.
func (c *Client) ListActiveVesselIDs(ctx context.Context, limit int) ([]int64, error) {
	const op = "list active vessels"

	body, err := c.get(ctx, op, activeVesselsPath)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := decode(body, &raw); err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Op: op, Err: fmt.Errorf("expected JSON array, got %s", jsonKind(raw))}
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		id, ok := parseVesselID(entry)
		if !ok {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// FetchFullSpecs returns the raw detail document for one vessel.
// A null or empty payload yields ErrNoData.
func (c *Client) FetchFullSpecs(ctx context.Context, vesselID int64) (normalizer.Document, error) {
	op := fmt.Sprintf("full specs %d", vesselID)

	body, err := c.get(ctx, op, fmt.Sprintf(fullSpecsPath, vesselID))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoData
	}

	var raw any
	if err := decode(body, &raw); err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}

	switch v := raw.(type) {
	case nil:
		return nil, ErrNoData
	case map[string]any:
		if len(v) == 0 {
			return nil, ErrNoData
		}
		return normalizer.Document(v), nil
	case []any:
		if len(v) == 0 {
			return nil, ErrNoData
		}
	}
	return nil, &ParseError{Op: op, Err: fmt.Errorf("expected JSON object, got %s", jsonKind(raw))}
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &HTTPStatusError{Op: op, StatusCode: resp.StatusCode, Body: msg}
	}

	return body, nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}
		return err
	}
	return nil
}

func parseVesselID(v any) (int64, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
