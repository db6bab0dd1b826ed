package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listinglens/backend/internal/domain"
	"github.com/listinglens/backend/internal/infrastructure/ingest"
	"github.com/listinglens/backend/internal/infrastructure/output"
	"github.com/listinglens/backend/internal/logging"
	"github.com/listinglens/backend/internal/usecase"
)

// Version is reported by the health check
const Version = "1.0.0"

// MaxBodyBytes bounds a resolve request body
const MaxBodyBytes = 32 << 20

// Resolver runs one resolution batch
type Resolver interface {
	Resolve(ctx context.Context, batch usecase.Batch) (*domain.Resolution, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver Resolver
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler. A nil cache disables response caching.
func NewHandler(resolver Resolver, cache domain.CacheRepository, cacheTTL time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ResolveRequest is the body of POST /api/v1/resolve
type ResolveRequest struct {
	Products []json.RawMessage `json:"products"`
	Listings []json.RawMessage `json:"listings"`
}

// RejectedRecord is an input record that failed to parse
type RejectedRecord struct {
	Kind  string `json:"kind"` // product or listing
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ResolveResponse is the body returned by POST /api/v1/resolve
type ResolveResponse struct {
	RunID     string                     `json:"run_id"`
	Results   []output.Result            `json:"results"`
	Aliases   []domain.ManufacturerAlias `json:"aliases"`
	Unmatched map[string]int             `json:"unmatched"`
	Pruned    map[string]int             `json:"pruned"`
	Rejected  []RejectedRecord           `json:"rejected"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "listinglens",
		"version": Version,
	})
}

// Resolve matches the posted listings against the posted products
func (h *Handler) Resolve(c *gin.Context) {
	if h.resolver == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "resolver is not configured"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
		return
	}

	ctx := c.Request.Context()
	key := cacheKey(body)
	if cached, ok := h.fromCache(ctx, key); ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	var req ResolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products is required"})
		return
	}

	products, listings, rejected := parseRecords(req)
	if len(products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid products", "rejected": rejected})
		return
	}

	runID := uuid.NewString()
	logger := h.logger.With().Str("rid", RequestID(c)).Logger()
	res, err := h.resolver.Resolve(ctx, usecase.Batch{
		RunID:    runID,
		Products: products,
		Listings: listings,
		Sink:     logging.NewSink(logger, runID),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp, err := buildResponse(res, rejected)
	if err != nil {
		h.handleError(c, err)
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.toCache(ctx, key, payload)
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func parseRecords(req ResolveRequest) ([]domain.Product, []domain.Listing, []RejectedRecord) {
	rejected := []RejectedRecord{}

	products := make([]domain.Product, 0, len(req.Products))
	for i, raw := range req.Products {
		p, err := ingest.ParseProduct(raw)
		if err != nil {
			rejected = append(rejected, RejectedRecord{Kind: "product", Index: i, Error: err.Error()})
			continue
		}
		products = append(products, p)
	}

	listings := make([]domain.Listing, 0, len(req.Listings))
	for i, raw := range req.Listings {
		l, err := ingest.ParseListing(raw)
		if err != nil {
			rejected = append(rejected, RejectedRecord{Kind: "listing", Index: i, Error: err.Error()})
			continue
		}
		listings = append(listings, l)
	}

	return products, listings, rejected
}

func buildResponse(res *domain.Resolution, rejected []RejectedRecord) (*ResolveResponse, error) {
	results, err := output.Results(res.Matches)
	if err != nil {
		return nil, err
	}
	aliases := res.Aliases
	if aliases == nil {
		aliases = []domain.ManufacturerAlias{}
	}
	return &ResolveResponse{
		RunID:   res.RunID,
		Results: results,
		Aliases: aliases,
		Unmatched: map[string]int{
			string(domain.UnmatchedManufacturer): res.CountUnmatched(domain.UnmatchedManufacturer),
			string(domain.UnmatchedProduct):      res.CountUnmatched(domain.UnmatchedProduct),
		},
		Pruned:   res.Pruned,
		Rejected: rejected,
	}, nil
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "resolve:" + hex.EncodeToString(sum[:])
}

func (h *Handler) fromCache(ctx context.Context, key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	data, err := h.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			h.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}
	return data, true
}

func (h *Handler) toCache(ctx context.Context, key string, payload []byte) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, payload, h.cacheTTL); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// handleError maps errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("rid", RequestID(c)).Msg("resolve failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("internal server error (request %s)", RequestID(c))})
	}
}
