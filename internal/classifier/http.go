package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// HTTPClassifier talks to a remote model service exposing
//
//	GET  {base}/columns  -> {"columns": [...]}
//	POST {base}/predict  <- {"rows": [[...], ...]}
//	                     -> {"predictions": [{"label": 1, "probabilities": [0.1, 0.9]}]}
//
// Server errors and transport failures are retried with exponential backoff;
// 4xx responses are not.
type HTTPClassifier struct {
	baseURL         string
	client          *http.Client
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// NewHTTPClassifier creates a client for the service at baseURL.
func NewHTTPClassifier(baseURL string, timeout time.Duration, maxRetries int, logger zerolog.Logger) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClassifier{
		baseURL:         strings.TrimRight(baseURL, "/"),
		client:          &http.Client{Timeout: timeout},
		maxRetries:      maxRetries,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     2 * time.Second,
		logger:          logger.With().Str("component", "classifier").Logger(),
	}
}

type columnsResponse struct {
	Columns []string `json:"columns"`
}

type predictRequest struct {
	Rows [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions []struct {
		Label         int       `json:"label"`
		Probabilities []float64 `json:"probabilities"`
	} `json:"predictions"`
}

// statusError is a non-2xx reply from the model service.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classifier returned %d: %s", e.code, e.body)
}

func (c *HTTPClassifier) Columns(ctx context.Context) ([]string, error) {
	var resp columnsResponse
	if err := c.do(ctx, http.MethodGet, "/columns", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch columns: %w", err)
	}
	return resp.Columns, nil
}

func (c *HTTPClassifier) Predict(ctx context.Context, rows [][]float64) ([]models.Prediction, error) {
	var resp predictResponse
	req := predictRequest{Rows: rows}
	if err := c.do(ctx, http.MethodPost, "/predict", req, &resp); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	preds := make([]models.Prediction, len(resp.Predictions))
	for i, p := range resp.Predictions {
		if len(p.Probabilities) != 2 {
			return nil, fmt.Errorf("prediction %d has %d probabilities, want 2", i, len(p.Probabilities))
		}
		preds[i] = models.Prediction{
			Label:         p.Label,
			Probabilities: [2]float64{p.Probabilities[0], p.Probabilities[1]},
		}
	}
	return preds, nil
}

func (c *HTTPClassifier) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := c.roundTrip(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return err
		}
		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		if attempt > c.maxRetries {
			return backoff.Permanent(err)
		}

		c.logger.Warn().Err(err).
			Str("path", path).
			Int("attempt", attempt).
			Msg("classifier request failed, retrying")
		return err
	}, backoff.WithContext(b, ctx))
}

func (c *HTTPClassifier) roundTrip(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
