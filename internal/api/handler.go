package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// StatementAnalyzer runs the extraction and risk pipeline over statement text.
type StatementAnalyzer interface {
	Analyze(ctx context.Context, text string, opts analysis.Options) *models.Result
}

// AnalyzeResponse is the JSON response from the /api/analyze endpoint.
type AnalyzeResponse struct {
	*models.Result
	Filename            string                      `json:"filename,omitempty"`
	TransactionAnalysis *models.TransactionAnalysis `json:"transactionAnalysis,omitempty"`
	Cached              bool                        `json:"cached"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	analyzer StatementAnalyzer
	results  *cache.Cache
	logger   zerolog.Logger
	version  string
}

// NewHandler creates a Handler. Successful analyses are cached in results,
// keyed by a digest of the statement text.
func NewHandler(a StatementAnalyzer, results *cache.Cache, logger zerolog.Logger, version string) *Handler {
	return &Handler{
		analyzer: a,
		results:  results,
		logger:   logger.With().Str("component", "api").Logger(),
		version:  version,
	}
}

// Health reports liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.version,
	})
}

// Analyze accepts a multipart upload with a .pdf or .txt statement in field
// "file". Text already extracted on the client can be sent in field
// "extractedText", pages separated by extractor.PageSeparator; it takes
// precedence over server-side extraction. debug=true adds the per-line trace.
func (h *Handler) Analyze(c *fiber.Ctx) error {
	debug, _ := strconv.ParseBool(c.FormValue("debug", c.Query("debug")))

	var filename string
	pages := extractor.SplitPages(c.FormValue("extractedText"))

	header, err := c.FormFile("file")
	switch {
	case err == nil:
		filename = header.Filename
		if !extractor.Supported(filename) {
			return writeError(c, fiber.StatusBadRequest, extractor.ErrUnsupportedType.Error())
		}
	case len(pages) == 0:
		return writeError(c, fiber.StatusBadRequest, "No statement uploaded. Use form field 'file' or 'extractedText'.")
	}

	if len(pages) == 0 {
		f, err := header.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}

		pages, err = extractor.Extract(filename, data)
		if err != nil {
			status := fiber.StatusUnprocessableEntity
			if !errors.Is(err, extractor.ErrNoReadableText) && !errors.Is(err, extractor.ErrUnsupportedType) {
				status = fiber.StatusInternalServerError
			}
			h.logger.Warn().Err(err).Str("filename", filename).Msg("text extraction failed")
			return writeError(c, status, fmt.Sprintf("Text extraction failed: %v", err))
		}
	}

	text := extractor.JoinPages(pages)
	key := cacheKey(text, debug)
	if cached, ok := h.results.Get(key); ok {
		resp := cached.(AnalyzeResponse)
		resp.Filename = filename
		resp.Cached = true
		return c.JSON(resp)
	}

	res := h.analyzer.Analyze(c.UserContext(), text, analysis.Options{IncludeDebug: debug})
	resp := AnalyzeResponse{Result: res, Filename: filename}
	if res.Error != "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	digest := analysis.Digest(res.Transactions)
	resp.TransactionAnalysis = &digest
	h.results.SetDefault(key, resp)

	return c.JSON(resp)
}

func cacheKey(text string, debug bool) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + ":" + strconv.FormatBool(debug)
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(AnalyzeResponse{Result: analysis.ErrorResult(msg)})
}
