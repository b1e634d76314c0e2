package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

var retrieverTracer = otel.Tracer("busypreacher/sermon-retriever")

// searchPath is the search endpoint on the sermon service, appended to the
// configured base URL.
const searchPath = "/api/search"

// SermonPassage is one ranked supporting passage from the sermon search
// service.
type SermonPassage struct {
	Title              string  `json:"title"`
	Date               string  `json:"date"`
	ScriptureReference string  `json:"scripture_reference"`
	Content            string  `json:"content"`
	Summary            string  `json:"summary"`
	Similarity         float64 `json:"similarity"`
}

// SermonRetriever returns supporting passages for a question. Implementations
// must degrade to an empty slice on failure rather than returning an error
// that would block the reply.
type SermonRetriever interface {
	Retrieve(ctx context.Context, query string) []SermonPassage
}

// HTTPSermonRetriever queries the external sermon search service. Retrieval is
// a soft dependency: any transport error, timeout, or non-2xx status collapses
// to an empty result.
type HTTPSermonRetriever struct {
	baseURL    string
	limit      int
	threshold  float64
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPSermonRetriever creates a retriever. An empty baseURL disables
// retrieval entirely, which is how local and dev deployments run.
func NewHTTPSermonRetriever(baseURL string, limit int, threshold float64, timeout time.Duration, logger *logging.Logger) *HTTPSermonRetriever {
	if logger == nil {
		logger = logging.Default()
	}
	if limit <= 0 {
		limit = 3
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSermonRetriever{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		limit:      limit,
		threshold:  threshold,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether a search endpoint is configured.
func (r *HTTPSermonRetriever) Enabled() bool {
	return r.baseURL != ""
}

type sermonSearchRequest struct {
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

type sermonSearchResponse struct {
	Sermons []SermonPassage `json:"sermons"`
}

// Retrieve queries the search service. Never returns an error: failures are
// logged and collapse to no passages.
func (r *HTTPSermonRetriever) Retrieve(ctx context.Context, query string) []SermonPassage {
	ctx, span := retrieverTracer.Start(ctx, "retriever.search")
	defer span.End()

	if !r.Enabled() {
		span.SetAttributes(attribute.Bool("retriever.disabled", true))
		return nil
	}

	body, err := json.Marshal(sermonSearchRequest{
		Query:     query,
		Limit:     r.limit,
		Threshold: r.threshold,
	})
	if err != nil {
		r.logger.Warn("sermon search request marshal failed", "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("sermon search request build failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("sermon search unavailable, continuing without context", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("sermon search returned error status",
			"status", resp.StatusCode,
		)
		return nil
	}

	var result sermonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		r.logger.Warn("sermon search response decode failed", "error", err)
		return nil
	}

	span.SetAttributes(attribute.Int("retriever.passages", len(result.Sermons)))
	r.logger.Debug("sermon search complete",
		"query_len", len(query),
		"passages", len(result.Sermons),
	)

	return result.Sermons
}

// NoopSermonRetriever always returns no passages. Used when no search service
// is configured.
type NoopSermonRetriever struct{}

func (NoopSermonRetriever) Retrieve(context.Context, string) []SermonPassage { return nil }

var _ SermonRetriever = (*HTTPSermonRetriever)(nil)
var _ SermonRetriever = NoopSermonRetriever{}

func formatPassage(p SermonPassage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sermon: %s", p.Title)
	if p.Date != "" {
		fmt.Fprintf(&b, " (%s)", p.Date)
	}
	if p.ScriptureReference != "" {
		fmt.Fprintf(&b, "\nScripture: %s", p.ScriptureReference)
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "\nSummary: %s", p.Summary)
	}
	if p.Content != "" {
		fmt.Fprintf(&b, "\nExcerpt: %s", p.Content)
	}
	return b.String()
}
