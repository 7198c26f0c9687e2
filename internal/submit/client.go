package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/daispacy/qcreport/internal/attachment"
	"github.com/daispacy/qcreport/internal/config"
	"github.com/daispacy/qcreport/internal/credential"
	"github.com/daispacy/qcreport/internal/payload"
	"github.com/daispacy/qcreport/pkg/types"
)

const (
	userAgent   = "qcreport/1.0.0"
	traceHeader = "X-Trace-Id"
)

// Authorizer is the slice of the auth resolver the client depends on.
type Authorizer interface {
	Resolve(ctx context.Context) (*credential.Credential, error)
}

// Client submits reports and uploads files to the webhook collector.
// Safe for concurrent use.
type Client struct {
	cfg        *config.Config
	resolver   Authorizer // nil when no authorization provider is configured
	processor  *attachment.Processor
	httpClient *http.Client
}

// New builds a Client. resolver may be nil; the static API key from the
// environment is used instead, and requests go out unauthenticated when
// neither is available.
func New(cfg *config.Config, resolver Authorizer, processor *attachment.Processor) *Client {
	return &Client{
		cfg:        cfg,
		resolver:   resolver,
		processor:  processor,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Submit runs the full pipeline for one report and returns the
// collector-assigned report id.
func (c *Client) Submit(ctx context.Context, r types.Report) (string, error) {
	base, err := validateEndpoint(c.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	authHeader, err := c.authorization(ctx)
	if err != nil {
		return "", err
	}

	// All attachments are processed before any network call; one
	// failure aborts the submission and no partial payload is sent.
	var processed []attachment.Processed
	if len(r.Attachments) > 0 {
		processed, err = attachment.ProcessAll(ctx, c.processor, r.Attachments)
		if err != nil {
			return "", err
		}
	}

	body, err := json.Marshal(payload.Build(r, processed))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	id, err := c.post(ctx, base, body, authHeader)
	if err != nil {
		return "", err
	}
	slog.Info("submit: report accepted", "report_id", id, "attachments", len(processed))
	return id, nil
}

// UploadFile processes a single attachment and posts it against an
// existing report id at the collector's /upload endpoint.
func (c *Client) UploadFile(ctx context.Context, att types.Attachment, reportID string) (string, error) {
	base, err := validateEndpoint(c.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	authHeader, err := c.authorization(ctx)
	if err != nil {
		return "", err
	}

	processed, err := c.processor.Process(ctx, att)
	if err != nil {
		return "", &UploadError{Message: err.Error()}
	}

	body, err := json.Marshal(payload.BuildUpload(reportID, processed))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return c.post(ctx, base+"/upload", body, authHeader)
}

// authorization resolves the Authorization header value: the configured
// provider first, then the static API key, else empty (unauthenticated).
func (c *Client) authorization(ctx context.Context) (string, error) {
	if c.resolver != nil {
		cred, err := c.resolver.Resolve(ctx)
		if err != nil {
			return "", mapAuthError(err)
		}
		return cred.Header, nil
	}
	if key := c.cfg.APIKey(); key != "" {
		return "Bearer " + key, nil
	}
	return "", nil
}

// post issues one POST with the fixed header set and classifies the
// response.
func (c *Client) post(ctx context.Context, target string, body []byte, authHeader string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", &NetworkError{Message: err.Error()}
	}

	traceID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(traceHeader, traceID)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("submit: request failed", "trace_id", traceID, "err", err)
		return "", &NetworkError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Message: err.Error()}
	}

	id, err := classify(respBody)
	if err != nil {
		slog.Warn("submit: collector rejected request",
			"trace_id", traceID, "status", resp.StatusCode, "err", err)
		return "", err
	}
	return id, nil
}

// validateEndpoint checks the configured collector URL before any
// network activity.
func validateEndpoint(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return strings.TrimRight(u.String(), "/"), nil
}
