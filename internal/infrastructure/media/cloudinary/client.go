package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/fvaskate/agency-api/internal/domain/media"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/platform/resilience"
	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// ClientConfig configures unsigned uploads into one Cloudinary cloud. No
// per-request auth beyond the fixed upload preset.
type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	CloudName      string
	UploadPreset   string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	cloudName      string
	uploadPreset   string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
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
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		cloudName:      strings.TrimSpace(cfg.CloudName),
		uploadPreset:   strings.TrimSpace(cfg.UploadPreset),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Upload pushes image bytes through the unsigned upload endpoint and returns
// the public HTTPS URL. Filenames are uniquified so repeated admin uploads of
// the same file never collide.
func (c *Client) Upload(ctx context.Context, data []byte, filename, folder string) (string, error) {
	if len(data) == 0 {
		return "", &media.UploadError{Filename: filename, Err: crerr.New("no file bytes provided")}
	}
	if c.cloudName == "" || c.uploadPreset == "" {
		return "", &media.UploadError{Filename: filename, Err: crerr.New("cloudinary is not configured")}
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cloudinary circuit breaker rejected upload", "state", c.breaker.State())
			return "", &media.UploadError{Filename: filename, Err: err}
		}
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", uniqueFilename(filename))
	if err != nil {
		return "", &media.UploadError{Filename: filename, Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &media.UploadError{Filename: filename, Err: err}
	}
	for field, value := range map[string]string{
		"upload_preset": c.uploadPreset,
		"folder":        folder,
		"resource_type": "auto",
	} {
		if err := writer.WriteField(field, value); err != nil {
			return "", &media.UploadError{Filename: filename, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return "", &media.UploadError{Filename: filename, Err: err}
	}

	endpoint := fmt.Sprintf("%s/%s/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body.B))
	if err != nil {
		return "", &media.UploadError{Filename: filename, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return "", &media.UploadError{Filename: filename, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure()
		return "", &media.UploadError{Filename: filename, Err: err}
	}

	var decoded uploadResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		c.recordFailure()
		return "", &media.UploadError{Filename: filename, Err: fmt.Errorf("decode upload response: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices || decoded.Error != nil {
		c.recordFailure()
		message := fmt.Sprintf("upload rejected with status %d", resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			message = decoded.Error.Message
		}
		return "", &media.UploadError{Filename: filename, Err: crerr.New(message)}
	}
	if decoded.SecureURL == "" {
		c.recordFailure()
		return "", &media.UploadError{Filename: filename, Err: crerr.New("upload response carried no secure URL")}
	}

	c.recordSuccess()
	c.logger.InfoContext(ctx, "image uploaded", "folder", folder, "public_id", decoded.PublicID)

	return decoded.SecureURL, nil
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

func uniqueFilename(filename string) string {
	base := strings.TrimSpace(filename)
	if base == "" {
		base = "upload"
	}
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return fmt.Sprintf("%s_%s%s", name, uuid.NewString()[:8], ext)
}
