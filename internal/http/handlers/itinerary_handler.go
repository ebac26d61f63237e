// README: Itinerary handlers; generation behind the usage guard plus saved-plan CRUD.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moodtrip/internal/ai"
	"moodtrip/internal/http/middleware"
	"moodtrip/internal/modules/itinerary"
	"moodtrip/internal/modules/usage"
)

type Planner interface {
	Generate(ctx context.Context, req itinerary.TripRequest) (*itinerary.Plan, error)
}

type PlanStore interface {
	Save(ctx context.Context, ownerUID string, p *itinerary.Plan) error
	Get(ctx context.Context, ownerUID, id string) (*itinerary.SavedPlan, error)
	List(ctx context.Context, ownerUID string, limit int) ([]itinerary.Summary, error)
	Update(ctx context.Context, ownerUID string, p *itinerary.Plan) error
	Delete(ctx context.Context, ownerUID, id string) error
}

type UsageGuard interface {
	Acquire(ctx context.Context, uid string) (func(), error)
	Consume(ctx context.Context, uid string) (time.Time, error)
	Refund(ctx context.Context, uid string, chargedAt time.Time) error
	Remaining(ctx context.Context, uid string) (int, error)
}

type Linker interface {
	Fill(ctx context.Context, p *itinerary.Plan) int
}

const quotaHeader = "X-Quota-Remaining"

type ItineraryHandler struct {
	planner Planner
	store   PlanStore
	usage   UsageGuard
	linker  Linker
	logger  *slog.Logger
	now     func() time.Time
}

// NewItineraryHandler wires the handler. linker may be nil when Maps is not configured.
func NewItineraryHandler(planner Planner, store PlanStore, guard UsageGuard, linker Linker, logger *slog.Logger) *ItineraryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItineraryHandler{
		planner: planner,
		store:   store,
		usage:   guard,
		linker:  linker,
		logger:  logger,
		now:     time.Now,
	}
}

type durationReq struct {
	Days   int `json:"days" binding:"min=0,max=30"`
	Nights int `json:"nights" binding:"min=0,max=30"`
}

type generateReq struct {
	TripMode      string      `json:"trip_mode" binding:"required,oneof=long short"`
	StartLocation string      `json:"start_location" binding:"max=200"`
	Destination   string      `json:"destination" binding:"max=200"`
	StartDate     string      `json:"start_date"`
	Duration      durationReq `json:"duration"`
	StartTime     string      `json:"start_time" binding:"max=20"`
	EndTime       string      `json:"end_time" binding:"max=20"`
	Budget        int64       `json:"budget" binding:"min=0"`
	Moods         []string    `json:"moods" binding:"max=6"`
	ShortMoods    []string    `json:"short_moods" binding:"max=6"`
	PersonalNote  string      `json:"personal_note" binding:"max=500"`
}

func (r generateReq) toTripRequest() itinerary.TripRequest {
	out := itinerary.TripRequest{
		Mode:          itinerary.TripMode(r.TripMode),
		StartLocation: r.StartLocation,
		Destination:   r.Destination,
		StartDate:     r.StartDate,
		Duration:      itinerary.Duration{Days: r.Duration.Days, Nights: r.Duration.Nights},
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Budget:        r.Budget,
		PersonalNote:  r.PersonalNote,
	}
	for _, m := range r.Moods {
		out.Moods = append(out.Moods, itinerary.Mood(m))
	}
	for _, m := range r.ShortMoods {
		out.ShortMoods = append(out.ShortMoods, itinerary.ShortMood(m))
	}
	return out
}

// Generate handles POST /api/itineraries/generate.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var body generateReq
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req := body.toTripRequest()
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	uid := middleware.CallerUID(c)
	ctx := c.Request.Context()

	release, err := h.usage.Acquire(ctx, uid)
	if err != nil {
		if errors.Is(err, usage.ErrInFlight) {
			writeError(c, http.StatusConflict, "in_flight", "Một lịch trình khác đang được tạo. Vui lòng chờ.")
			return
		}
		h.internalError(c, "acquire in-flight slot", err)
		return
	}
	defer release()

	chargedAt, err := h.usage.Consume(ctx, uid)
	if err != nil {
		if errors.Is(err, usage.ErrQuotaExceeded) {
			writeError(c, http.StatusTooManyRequests, "quota_exceeded", "Bạn đã dùng hết lượt tạo lịch trình trong tháng này.")
			return
		}
		h.internalError(c, "consume quota", err)
		return
	}

	plan, err := h.planner.Generate(ctx, req)
	if err != nil {
		if rerr := h.usage.Refund(context.WithoutCancel(ctx), uid, chargedAt); rerr != nil {
			h.logger.Warn("quota refund failed", "uid", uid, "err", rerr)
		}
		status, code := generationStatus(err)
		writeError(c, status, code, itinerary.UserMessage(err))
		return
	}
	itinerary.AssignID(plan, h.now())

	if left, err := h.usage.Remaining(ctx, uid); err == nil && left >= 0 {
		c.Header(quotaHeader, strconv.Itoa(left))
	}
	writeJSON(c, http.StatusOK, plan)
}

func generationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrAuth):
		return http.StatusBadGateway, "gateway_auth"
	case errors.Is(err, ai.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusServiceUnavailable, "generation_failed"
	}
}

// List handles GET /api/itineraries.
func (h *ItineraryHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.store.List(c.Request.Context(), middleware.CallerUID(c), limit)
	if err != nil {
		h.internalError(c, "list itineraries", err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"itineraries": items})
}

// Save handles POST /api/itineraries.
func (h *ItineraryHandler) Save(c *gin.Context) {
	var plan itinerary.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if err := itinerary.CheckAnchors(&plan); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if plan.ID == "" {
		itinerary.AssignID(&plan, h.now())
	} else if !isValidID(plan.ID) {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}
	if err := h.store.Save(c.Request.Context(), middleware.CallerUID(c), &plan); err != nil {
		h.internalError(c, "save itinerary", err)
		return
	}
	writeJSON(c, http.StatusCreated, &plan)
}

// Get handles GET /api/itineraries/:id.
func (h *ItineraryHandler) Get(c *gin.Context) {
	saved, ok := h.load(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, saved.Plan)
}

// Delete handles DELETE /api/itineraries/:id.
func (h *ItineraryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}
	err := h.store.Delete(c.Request.Context(), middleware.CallerUID(c), id)
	switch {
	case errors.Is(err, itinerary.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case err != nil:
		h.internalError(c, "delete itinerary", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

type scheduleEditReq struct {
	DayIndex  *int   `json:"day_index" binding:"required"`
	ItemIndex *int   `json:"item_index" binding:"required"`
	Time      string `json:"time" binding:"required,max=50"`
}

// EditSchedule handles PATCH /api/itineraries/:id/schedule.
func (h *ItineraryHandler) EditSchedule(c *gin.Context) {
	var body scheduleEditReq
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	saved, ok := h.load(c)
	if !ok {
		return
	}
	if err := saved.Plan.SetItemTime(*body.DayIndex, *body.ItemIndex, body.Time); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.update(c, saved.Plan, saved.Plan)
}

// FillLinks handles POST /api/itineraries/:id/links.
func (h *ItineraryHandler) FillLinks(c *gin.Context) {
	if h.linker == nil {
		writeError(c, http.StatusServiceUnavailable, "links_unavailable", "map lookups are not configured")
		return
	}
	saved, ok := h.load(c)
	if !ok {
		return
	}
	filled := h.linker.Fill(c.Request.Context(), saved.Plan)
	if filled == 0 {
		writeJSON(c, http.StatusOK, gin.H{"filled": 0, "itinerary": saved.Plan})
		return
	}
	h.update(c, saved.Plan, gin.H{"filled": filled, "itinerary": saved.Plan})
}

func (h *ItineraryHandler) load(c *gin.Context) (*itinerary.SavedPlan, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid id")
		return nil, false
	}
	saved, err := h.store.Get(c.Request.Context(), middleware.CallerUID(c), id)
	if errors.Is(err, itinerary.ErrNotFound) {
		writeError(c, http.StatusNotFound, "not_found", err.Error())
		return nil, false
	}
	if err != nil {
		h.internalError(c, "get itinerary", err)
		return nil, false
	}
	return saved, true
}

func (h *ItineraryHandler) update(c *gin.Context, plan *itinerary.Plan, resp any) {
	err := h.store.Update(c.Request.Context(), middleware.CallerUID(c), plan)
	switch {
	case errors.Is(err, itinerary.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case err != nil:
		h.internalError(c, "update itinerary", err)
	default:
		writeJSON(c, http.StatusOK, resp)
	}
}

func (h *ItineraryHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(op, "err", err, "request_id", middleware.RequestID(c))
	writeError(c, http.StatusInternalServerError, "internal", "internal error")
}

// Quota handles GET /api/usage.
func (h *ItineraryHandler) Quota(c *gin.Context) {
	left, err := h.usage.Remaining(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		h.internalError(c, "read quota", err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"remaining": left})
}
