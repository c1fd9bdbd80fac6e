package api

import (
	"bytes"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/archive"
	"github.com/basekick-labs/gridtab/internal/catalog"
	"github.com/basekick-labs/gridtab/internal/ingest"
	"github.com/basekick-labs/gridtab/internal/metrics"
	"github.com/basekick-labs/gridtab/internal/storage"
)

// storePrefix is where stored transform results are written.
const storePrefix = "transforms"

// TransformDefaults are the per-request defaults taken from configuration.
type TransformDefaults struct {
	Format   string
	Describe bool
}

// TransformHandler serves document transformation and the dispatch and
// catalog lookups around it.
type TransformHandler struct {
	processor   *archive.Processor
	arrowWriter *ingest.ArrowWriter
	storage     storage.Backend
	metrics     *metrics.Metrics
	defaults    TransformDefaults
	logger      zerolog.Logger

	// Stats
	totalRequests  atomic.Int64
	totalDocuments atomic.Int64
	totalRows      atomic.Int64
	totalBytes     atomic.Int64
	totalErrors    atomic.Int64
	totalStored    atomic.Int64
}

// NewTransformHandler creates a transform handler. backend may be nil, which
// disables store=true.
func NewTransformHandler(processor *archive.Processor, aw *ingest.ArrowWriter, backend storage.Backend, m *metrics.Metrics, defaults TransformDefaults, logger zerolog.Logger) *TransformHandler {
	if defaults.Format == "" {
		defaults.Format = ingest.FormatJSON
	}
	return &TransformHandler{
		processor:   processor,
		arrowWriter: aw,
		storage:     backend,
		metrics:     m,
		defaults:    defaults,
		logger:      logger.With().Str("component", "transform-handler").Logger(),
	}
}

// RegisterRoutes registers transform routes
func (h *TransformHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/transform", h.handleTransform)
	app.Get("/api/v1/transform/stats", h.Stats)
	app.Get("/api/v1/dispatch", h.handleDispatch)
	app.Get("/api/v1/catalog", h.handleCategories)
	app.Get("/api/v1/catalog/:category/:code", h.handleLookup)

	h.logger.Info().Msg("Transform routes registered")
}

// handleTransform converts a document or zip bundle into a table.
//
// Query parameters: format (json, msgpack, csv, parquet, arrow), sort and
// describe (booleans), store (write the encoded table to the storage backend
// and answer with its key instead of the table). Without sort, only archives
// are sorted, and only when the processor defaults say so.
func (h *TransformHandler) handleTransform(c *fiber.Ctx) error {
	h.totalRequests.Add(1)

	body := c.Body()
	if len(body) == 0 {
		h.totalErrors.Add(1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Empty request body",
		})
	}
	h.totalBytes.Add(int64(len(body)))

	format := c.Query("format", h.defaults.Format)
	encoder, err := ingest.NewEncoder(format, h.arrowWriter)
	if err != nil {
		h.totalErrors.Add(1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	describe, err := queryBool(c, "describe", h.defaults.Describe)
	if err != nil {
		h.totalErrors.Add(1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	store, err := queryBool(c, "store", false)
	if err != nil {
		h.totalErrors.Add(1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if store && h.storage == nil {
		h.totalErrors.Add(1)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "storage backend is not configured",
		})
	}

	var batch *archive.Batch
	if raw := c.Query("sort"); raw != "" {
		sortByTime, perr := strconv.ParseBool(raw)
		if perr != nil {
			h.totalErrors.Add(1)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sort: " + raw})
		}
		batch, err = h.processor.ProcessWithOptions(c.UserContext(), body, c.Get(fiber.HeaderContentType), archive.Options{SortByTime: sortByTime})
	} else {
		batch, err = h.processor.Process(c.UserContext(), body, c.Get(fiber.HeaderContentType))
	}
	if err != nil {
		h.totalErrors.Add(1)
		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Transform failed")
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   err.Error(),
			"outcome": ingest.Outcome(err),
		})
	}
	if h.metrics != nil {
		h.metrics.ObservePayload(batch.Kind.String(), len(body))
	}

	if describe {
		catalog.Describe(batch.Table)
	}

	var buf bytes.Buffer
	if err := encoder.Encode(&buf, batch.Table); err != nil {
		h.totalErrors.Add(1)
		h.logger.Error().Err(err).Str("format", format).Msg("Failed to encode table")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Encode failed: " + err.Error(),
		})
	}

	h.totalDocuments.Add(int64(len(batch.Documents)))
	h.totalRows.Add(int64(batch.Table.Len()))

	if store {
		key := storage.ObjectKey(storePrefix, time.Now(), encoder.Extension())
		err := h.storage.Write(c.UserContext(), key, buf.Bytes())
		if h.metrics != nil {
			h.metrics.ObserveStorageWrite(err)
		}
		if err != nil {
			h.totalErrors.Add(1)
			h.logger.Error().Err(err).Str("key", key).Msg("Failed to store table")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Store failed: " + err.Error(),
			})
		}
		h.totalStored.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"key":       key,
			"backend":   h.storage.Type(),
			"rows":      batch.Table.Len(),
			"columns":   batch.Table.Columns,
			"documents": batch.Documents,
		})
	}

	c.Set("X-Gridtab-Rows", strconv.Itoa(batch.Table.Len()))
	c.Set("X-Gridtab-Documents", strconv.Itoa(len(batch.Documents)))
	c.Set(fiber.HeaderContentType, encoder.ContentType())
	return c.Send(buf.Bytes())
}

func (h *TransformHandler) handleDispatch(c *fiber.Ctx) error {
	entries := ingest.DispatchTable()
	return c.JSON(fiber.Map{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *TransformHandler) handleCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": catalog.Categories(),
	})
}

func (h *TransformHandler) handleLookup(c *fiber.Ctx) error {
	category := catalog.Category(c.Params("category"))
	code := c.Params("code")

	if !catalog.Known(category) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":      "unknown category: " + string(category),
			"categories": catalog.Categories(),
		})
	}
	meaning, ok := catalog.Lookup(category, code)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown code " + code + " in " + string(category),
		})
	}
	resp := fiber.Map{
		"category": category,
		"code":     code,
		"meaning":  meaning,
	}
	if area, ok := catalog.LookupArea(code); category == catalog.Area && ok {
		resp["name"] = area.Name
		resp["timezone"] = area.Timezone
	}
	return c.JSON(resp)
}

// Stats returns transform handler statistics
func (h *TransformHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"stats": fiber.Map{
			"total_requests":  h.totalRequests.Load(),
			"total_documents": h.totalDocuments.Load(),
			"total_rows":      h.totalRows.Load(),
			"total_bytes":     h.totalBytes.Load(),
			"total_errors":    h.totalErrors.Load(),
			"total_stored":    h.totalStored.Load(),
		},
	})
}

// statusFor maps transform errors to HTTP status codes: document content
// problems are 422, payload problems 4xx, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, archive.ErrUnsupportedMediaType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, archive.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, archive.ErrInvalidArchive):
		return fiber.StatusBadRequest
	}
	switch ingest.Outcome(err) {
	case "error", "ok":
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusUnprocessableEntity
	}
}

func queryBool(c *fiber.Ctx, key string, def bool) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + key + ": " + raw)
	}
	return v, nil
}
