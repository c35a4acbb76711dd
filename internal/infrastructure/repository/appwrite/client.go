package appwrite

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/fvaskate/agency-api/internal/domain/gateway"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/platform/resilience"
)

const orderNewestFirst = `orderDesc("$createdAt")`

var errAppwriteTransient = crerr.New("document store transient failure")

// ClientConfig configures access to one Appwrite project database.
type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	ProjectID      string
	APIKey         string
	DatabaseID     string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client speaks the hosted document store's REST API. It carries no schema of
// its own; collection repositories layer field mapping on top.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	projectID      string
	apiKey         string
	databaseID     string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		projectID:      strings.TrimSpace(cfg.ProjectID),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		databaseID:     strings.TrimSpace(cfg.DatabaseID),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) documentsPath(collectionID string) string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents", c.databaseID, collectionID)
}

// listDocuments fetches every document in a collection, newest first.
// Concurrent list calls for the same collection are deduplicated.
func (c *Client) listDocuments(ctx context.Context, collectionID string, out any) error {
	raw, err, _ := c.flight.Do("list:"+collectionID, func() (any, error) {
		query := url.Values{}
		query.Add("queries[]", orderNewestFirst)
		return c.do(ctx, http.MethodGet, c.documentsPath(collectionID), query, nil)
	})
	if err != nil {
		return err
	}

	body, ok := raw.([]byte)
	if !ok {
		return crerr.New("unexpected list payload type")
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode document list: %w", err)
	}

	return nil
}

func (c *Client) createDocument(ctx context.Context, collectionID string, data any, out any) error {
	payload := map[string]any{
		"documentId": "unique()",
		"data":       data,
	}

	body, err := c.do(ctx, http.MethodPost, c.documentsPath(collectionID), nil, payload)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode created document: %w", err)
	}

	return nil
}

func (c *Client) updateDocument(ctx context.Context, collectionID, documentID string, data map[string]any) error {
	path := c.documentsPath(collectionID) + "/" + url.PathEscape(documentID)
	_, err := c.do(ctx, http.MethodPatch, path, nil, map[string]any{"data": data})

	return err
}

func (c *Client) deleteDocument(ctx context.Context, collectionID, documentID string) error {
	path := c.documentsPath(collectionID) + "/" + url.PathEscape(documentID)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)

	return err
}

type errorEnvelope struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "document store circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("document store is temporarily unavailable: %w", err)
		}
	}

	if c.baseURL == "" {
		return nil, crerr.New("document store base URL is not configured")
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Appwrite-Project", c.projectID)
	req.Header.Set("X-Appwrite-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, crerr.Mark(fmt.Errorf("document store request failed: %w", err), errAppwriteTransient)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return nil, crerr.Mark(fmt.Errorf("read document store response: %w", err), errAppwriteTransient)
	}

	if resp.StatusCode == http.StatusNotFound {
		c.recordSuccess()
		return nil, fmt.Errorf("%s %s: %w", method, path, gateway.ErrNotFound)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if resp.StatusCode >= http.StatusInternalServerError {
			c.recordFailure()
		} else {
			c.recordSuccess()
		}

		var remote errorEnvelope
		if decodeErr := sonic.Unmarshal(raw, &remote); decodeErr == nil && remote.Message != "" {
			return nil, fmt.Errorf("document store rejected request (%d %s): %s", resp.StatusCode, remote.Type, remote.Message)
		}
		return nil, fmt.Errorf("document store returned status %d", resp.StatusCode)
	}

	c.recordSuccess()

	return raw, nil
}

func (c *Client) recordSuccess() {
	if c.circuitEnabled {
		c.breaker.RecordSuccess()
	}
}

func (c *Client) recordFailure() {
	if c.circuitEnabled {
		c.breaker.RecordFailure()
	}
}

// IsTransient reports whether an error came from transport-level trouble
// rather than a remote rejection.
func IsTransient(err error) bool {
	return crerr.Is(err, errAppwriteTransient) || stderrors.Is(err, resilience.ErrCircuitOpen)
}
