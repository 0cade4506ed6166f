package stocktake

import (
	"time"

	"stac-stocktake/core/checkpoint"
	"stac-stocktake/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RunStatus is the wire form of one run's state.
type RunStatus struct {
	RunID       int64     `json:"run_id"`
	State       string    `json:"state"`
	SourceKey   string    `json:"source_key"`
	CatalogKey  string    `json:"catalog_key"`
	Processed   int64     `json:"processed"`
	Created     int64     `json:"created"`
	Deleted     int64     `json:"deleted"`
	Matched     int64     `json:"matched"`
	StartedAt   time.Time `json:"started_at"`
	LastSavedAt time.Time `json:"last_saved_at"`
}

// Handler handles HTTP requests for stocktake status.
type Handler struct {
	store checkpoint.Store
	log   *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store checkpoint.Store, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// RegisterRoutes registers the stocktake routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stocktake")
	group.Get("/status", h.HandleGetStatus)
}

// HandleGetStatus returns the state of the latest stocktake run.
func (h *Handler) HandleGetStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.log, c)

	st, err := h.store.Latest(c.Context())
	if err != nil {
		l.Error("Status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if st == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no stocktake has run",
		})
	}

	state := "completed"
	if st.Resumable() {
		state = "running"
	}
	return c.JSON(RunStatus{
		RunID:       st.RunID,
		State:       state,
		SourceKey:   st.SourceKey,
		CatalogKey:  st.CatalogKey,
		Processed:   st.Processed,
		Created:     st.Created,
		Deleted:     st.Deleted,
		Matched:     st.Matched,
		StartedAt:   st.StartedAt,
		LastSavedAt: st.LastSavedAt,
	})
}
