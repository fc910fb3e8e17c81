// Package api - HTTP handlers for allocation
// Handlers wrap the engine and contain NO allocation logic.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	catalogsource "instance-allocator/adapters/catalog"
	"instance-allocator/core/catalog"
	"instance-allocator/core/determinism"
	"instance-allocator/core/engine"
	"instance-allocator/core/output"
	"instance-allocator/core/types"
	"instance-allocator/internal/errors"
	"instance-allocator/internal/logging"
)

// Handler serves allocation requests
type Handler struct {
	engine  *engine.Engine
	source  catalogsource.Source
	cache   *gocache.Cache
	version string
	logger  *zap.Logger
}

// NewHandler creates a handler. source may be nil, in which case every
// request must carry an inline catalog. A zero cacheTTL disables the
// response cache.
func NewHandler(eng *engine.Engine, source catalogsource.Source, cacheTTL time.Duration, version string) *Handler {
	h := &Handler{
		engine:  eng,
		source:  source,
		version: version,
		logger:  logging.Named("api"),
	}
	if cacheTTL > 0 {
		h.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return h
}

// HandleAllocate handles POST /v1/allocate
func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := RequestIDFrom(ctx)

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Wrap(errors.TypeInput, "invalid JSON body", err))
		return
	}

	c, sourceName, err := h.resolveCatalog(ctx, req.Catalog)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	key, err := determinism.ContentHash(cacheKey{Catalog: c, Request: req.Request()})
	if err != nil {
		// NaN and Inf do not encode; let validation report them
		key = ""
	}

	if cached, ok := h.lookup(key); ok {
		report := *cached
		report.Metadata.RequestID = requestID
		report.Metadata.Source = sourceName
		report.Metadata.DurationMS = time.Since(start).Milliseconds()
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, &report, http.StatusOK)
		return
	}

	result, err := h.engine.Allocate(ctx, c, req.Request())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report := &output.Report{
		Result: result,
		Metadata: output.Metadata{
			RequestID:  requestID,
			InputHash:  key,
			DurationMS: time.Since(start).Milliseconds(),
			Source:     sourceName,
			Version:    h.version,
		},
	}
	h.store(key, report)

	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, report, http.StatusOK)
}

// HandleCatalog handles GET /v1/catalog
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.writeError(w, r, errors.NotFound("catalog source", "none configured"))
		return
	}

	c, err := h.source.Load(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	regions, err := catalog.NormalizeAll(c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, CatalogResponse{Source: h.source.Name(), Regions: regions}, http.StatusOK)
}

func (h *Handler) resolveCatalog(ctx context.Context, inline types.Catalog) (types.Catalog, string, error) {
	if inline != nil {
		return inline, "inline", nil
	}
	if h.source == nil {
		return nil, "", errors.Input("catalog is required: no catalog source is configured")
	}
	c, err := h.source.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	return c, h.source.Name(), nil
}

func (h *Handler) lookup(key string) (*output.Report, bool) {
	if h.cache == nil || key == "" {
		return nil, false
	}
	v, ok := h.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*output.Report), true
}

func (h *Handler) store(key string, report *output.Report) {
	if h.cache == nil || key == "" {
		return
	}
	h.cache.SetDefault(key, report)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := ErrorBody{
		Code:      string(errors.TypeInternal),
		Message:   err.Error(),
		RequestID: RequestIDFrom(r.Context()),
	}

	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		body.Code = string(domainErr.Type)
		body.Message = domainErr.Message
		body.Context = jsonSafe(domainErr.Context)
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("request_id", body.RequestID), zap.Error(err))
	}
	writeJSON(w, ErrorResponse{Error: body}, status)
}

// StatusFor maps a domain error type to an HTTP status code
func StatusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeInvalidDuration, errors.TypeInvalidConstraint:
		return http.StatusBadRequest
	case errors.TypeUnknownInstanceType, errors.TypeInvalidPrice:
		return http.StatusUnprocessableEntity
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeCatalog, errors.TypeNetwork:
		return http.StatusBadGateway
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// jsonSafe drops values encoding/json cannot write, such as NaN hours
func jsonSafe(ctx map[string]interface{}) map[string]interface{} {
	if len(ctx) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
