package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ClientConfig configures the HTTP recognizer.
type ClientConfig struct {
	// BaseURL is the collaborator root; the client POSTs to BaseURL/entities.
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// HTTPRecognizer talks to an entity-recognition service over JSON/HTTP.
type HTTPRecognizer struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	schema  map[string]any
}

func NewHTTPRecognizer(cfg ClientConfig) *HTTPRecognizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &HTTPRecognizer{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
		schema:  BuildEntitiesResponseSchema(),
	}
}

type entitiesRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities map[Category][]Mention `json:"entities"`
}

// Entities sends the text to the collaborator and returns its mentions per
// category. The response body is schema-validated before use; every category
// key is present in the returned map.
func (r *HTTPRecognizer) Entities(ctx context.Context, text string) (map[Category][]Mention, error) {
	raw, _, err := sendJSON(ctx, r.client, r.baseURL+"/entities", entitiesRequest{Text: text}, r.logger)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSONAgainstSchema(r.schema, raw); err != nil {
		return nil, fmt.Errorf("entities response: %w", err)
	}
	var resp entitiesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode entities response: %w", err)
	}
	out := emptyEntities()
	for _, c := range Categories {
		if mm, ok := resp.Entities[c]; ok {
			out[c] = mm
		}
	}
	return out, nil
}

// sendJSON posts a JSON body and returns the raw response. It assumes no
// particular service; callers decide the URL.
func sendJSON(ctx context.Context, client *http.Client, url string, body any, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("ner.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("ner.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("ner.http.request",
		"req_id", reqID,
		"url", url,
		"content_length", len(bs),
	)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("ner.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn("ner.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	logger.Debug("ner.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
