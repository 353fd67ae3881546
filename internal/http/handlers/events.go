package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/gin-gonic/gin"
)

type EventsService interface {
	CreateEvent(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	ListEvents(ctx context.Context, q event.ListQuery) (event.ListResult, error)
	GetEvent(ctx context.Context, id int64) (event.Event, error)
	CancelEvent(ctx context.Context, id int64) (event.Event, error)
	Stats(ctx context.Context, id int64) (event.Stats, error)
}

type EventsHandler struct {
	svc EventsService
}

func NewEventsHandler(svc EventsService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// eventIDParam reads :id. Anything that is not a positive integer becomes 0,
// which no event has, so the service answers "Event not found" in its usual
// check order.
func eventIDParam(ctx *gin.Context) int64 {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), req)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	var params event.ListParams

	if err := ctx.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(ctx, "invalid_query", "query parameters could not be read", nil)
		return
	}

	res, err := h.svc.ListEvents(ctx.Request.Context(), params.Normalize())
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, res)
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	e, err := h.svc.GetEvent(ctx.Request.Context(), eventIDParam(ctx))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) CancelEvent(ctx *gin.Context) {
	e, err := h.svc.CancelEvent(ctx.Request.Context(), eventIDParam(ctx))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) Stats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context(), eventIDParam(ctx))
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, stats)
}
