package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/gin-gonic/gin"
)

type RegistrationService interface {
	Register(ctx context.Context, eventID int64, req registration.CreateRegistrationRequest) (registration.Registration, error)
}

// RegistrationObserver counts outcomes; *observability.Prom satisfies it.
type RegistrationObserver interface {
	ObserveRegistration(outcome string)
}

type RegistrationHandler struct {
	svc     RegistrationService
	metrics RegistrationObserver
}

func NewRegistrationHandler(svc RegistrationService, metrics RegistrationObserver) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, metrics: metrics}
}

func (h *RegistrationHandler) Register(ctx *gin.Context) {
	var req registration.CreateRegistrationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// the URL param is the source of truth for the event
	reg, err := h.svc.Register(ctx.Request.Context(), eventIDParam(ctx), req)
	if err != nil {
		h.observe(apperr.From(err).Code)
		RespondErr(ctx, err)
		return
	}

	h.observe("ok")
	ctx.JSON(http.StatusOK, reg)
}

func (h *RegistrationHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveRegistration(outcome)
	}
}
