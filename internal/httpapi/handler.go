package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vipul43/yatco-sync/internal/models"
	"github.com/vipul43/yatco-sync/internal/repository"
	"github.com/vipul43/yatco-sync/internal/service"
	"github.com/vipul43/yatco-sync/internal/store"
)

// SyncService is the runner surface exposed to operators
type SyncService interface {
	Run(ctx context.Context, mode models.SyncMode) models.SyncStatus
	Progress(ctx context.Context) (service.Progress, error)
	RequestStop(ctx context.Context) error
	ClearCheckpoint(ctx context.Context) error
	ClearCaches(ctx context.Context) error
	CachedVessels(ctx context.Context) (*models.VesselCache, error)
}

// Trigger queues a background run
type Trigger interface {
	Trigger(mode models.SyncMode) bool
}

// StatsHistory lists the daily change snapshots
type StatsHistory interface {
	History(ctx context.Context) ([]models.DailyStatSnapshot, error)
}

// VesselStatusChecker reports whether a vessel is still for sale
type VesselStatusChecker interface {
	CheckVesselStatus(ctx context.Context, vesselID int64) (models.VesselStatus, error)
}

// RunHistory lists recorded sync runs
type RunHistory interface {
	ListRecent(ctx context.Context, limit int) ([]models.SyncRun, error)
}

// VesselLister reads the durable vessel table
type VesselLister interface {
	List(ctx context.Context, filter repository.VesselFilter) ([]models.Vessel, error)
}

const maxPageSize = 100

type Handler struct {
	sync    SyncService
	trigger Trigger
	stats   StatsHistory
	status  VesselStatusChecker
	runs    RunHistory   // nil without a database
	vessels VesselLister // nil without a database
}

func NewHandler(
	sync SyncService,
	trigger Trigger,
	stats StatsHistory,
	status VesselStatusChecker,
	runs RunHistory,
	vessels VesselLister,
) *Handler {
	return &Handler{
		sync:    sync,
		trigger: trigger,
		stats:   stats,
		status:  status,
		runs:    runs,
		vessels: vessels,
	}
}

// Setup registers the routes on app
func (h *Handler) Setup(app *fiber.App) {
	app.Get("/health", h.Health)

	sync := app.Group("/sync")
	sync.Get("/status", h.GetStatus)
	sync.Post("/run", h.RunSync)
	sync.Post("/trigger", h.TriggerSync)
	sync.Post("/stop", h.StopSync)
	sync.Delete("/checkpoint", h.ClearCheckpoint)
	sync.Get("/runs", h.ListRuns)

	app.Delete("/cache", h.ClearCache)
	app.Get("/stats/daily", h.DailyStats)
	app.Get("/vessels", h.ListVessels)
	app.Get("/vessels/stored", h.ListStoredVessels)
	app.Get("/vessels/:id/status", h.VesselStatus)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) GetStatus(c *fiber.Ctx) error {
	p, err := h.sync.Progress(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// RunSync runs a sync in the request and returns its final status
func (h *Handler) RunSync(c *fiber.Ctx) error {
	mode, err := queryMode(c)
	if err != nil {
		return err
	}

	st := h.sync.Run(c.UserContext(), mode)
	if st.State == models.SyncStateBusy {
		return c.Status(fiber.StatusConflict).JSON(st)
	}
	return c.JSON(st)
}

// TriggerSync queues a background run and returns immediately
func (h *Handler) TriggerSync(c *fiber.Ctx) error {
	mode, err := queryMode(c)
	if err != nil {
		return err
	}

	if !h.trigger.Trigger(mode) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A sync is already queued",
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Sync queued",
		"mode":    mode,
	})
}

func (h *Handler) StopSync(c *fiber.Ctx) error {
	if err := h.sync.RequestStop(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Stop requested"})
}

func (h *Handler) ClearCheckpoint(c *fiber.Ctx) error {
	if err := h.sync.ClearCheckpoint(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Checkpoint cleared"})
}

func (h *Handler) ClearCache(c *fiber.Ctx) error {
	if err := h.sync.ClearCaches(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Caches cleared"})
}

func (h *Handler) DailyStats(c *fiber.Ctx) error {
	history, err := h.stats.History(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": history})
}

// ListVessels serves the record list written by the last completed run
func (h *Handler) ListVessels(c *fiber.Ctx) error {
	cache, err := h.sync.CachedVessels(c.UserContext())
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "No completed sync in cache")
	}
	if err != nil {
		return err
	}
	return c.JSON(cache)
}

// ListRuns returns the latest recorded runs, newest first
func (h *Handler) ListRuns(c *fiber.Ctx) error {
	if h.runs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Run history requires DATABASE_URL")
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	runs, err := h.runs.ListRecent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": runs})
}

// ListStoredVessels pages through the durable vessel table
func (h *Handler) ListStoredVessels(c *fiber.Ctx) error {
	if h.vessels == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Vessel table requires DATABASE_URL")
	}

	filter := repository.VesselFilter{
		Builder:    c.Query("builder"),
		Type:       c.Query("type"),
		ActiveOnly: c.QueryBool("active", true),
		Limit:      c.QueryInt("limit", maxPageSize),
		Offset:     c.QueryInt("offset", 0),
	}
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	vessels, err := h.vessels.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": vessels})
}

func (h *Handler) VesselStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid vessel id")
	}

	st, err := h.status.CheckVesselStatus(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(st)
}

func queryMode(c *fiber.Ctx) (models.SyncMode, error) {
	mode, ok := models.ParseSyncMode(c.Query("mode"))
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid sync mode: "+c.Query("mode"))
	}
	return mode, nil
}
