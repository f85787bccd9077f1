package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/utils"
	"github.com/quantmind-br/reposnap/pkg/version"
)

const (
	githubBaseURL = "https://github.com"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Handler translates HTTP requests into snapshot fetches
type Handler struct {
	fetcher domain.Fetcher
	journal domain.Journal
	timeout time.Duration
	logger  *utils.Logger
}

// HandlerOptions contains the collaborators of a Handler.
// Journal is optional; without it /history answers 404.
type HandlerOptions struct {
	Fetcher domain.Fetcher
	Journal domain.Journal
	Timeout time.Duration
	Logger  *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Handler{
		fetcher: opts.Fetcher,
		journal: opts.Journal,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// RegisterRoutes mounts the reposnap API onto the given router
func RegisterRoutes(r gin.IRoutes, h *Handler) {
	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	r.GET("/history", h.History)
	r.GET("/:org/:repo", h.Snapshot)
}

// Root answers the liveness greeting
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Hello, world!")
}

// Health reports the service status and build version
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Short()})
}

// History returns the most recent journal records, newest first
func (h *Handler) History(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal disabled"})
		return
	}

	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxHistoryLimit {
			limit = parsed
		}
	}

	records, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read journal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
		return
	}
	if records == nil {
		records = []*domain.FetchRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// Snapshot fetches https://github.com/{org}/{repo} and answers with the
// aggregated text. Every failure, including a panic in the fetch, is a 500.
func (h *Handler) Snapshot(c *gin.Context) {
	url := fmt.Sprintf("%s/%s/%s", githubBaseURL, c.Param("org"), c.Param("repo"))
	req := domain.FetchRequest{URL: url, Timeout: h.timeout}

	// Only the fetch timeout cancels the work, not the client going away.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.run(ctx, req)
	if err != nil {
		h.logger.Error().Err(err).Str("url", url).Msg("Snapshot request failed")
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Content.String()))
}

type outcome struct {
	result *domain.FetchResult
	err    error
}

// run executes the fetch on its own goroutine and turns a panic into an error
func (h *Handler) run(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error) {
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("task join error: %v", r)}
			}
		}()
		result, err := h.fetcher.Fetch(ctx, req)
		done <- outcome{result: result, err: err}
	}()

	o := <-done
	return o.result, o.err
}
