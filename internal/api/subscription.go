package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	appctx "github.com/lexibot/word-of-the-day-bot/internal/context"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
)

type (
	SubscriptionView struct {
		Identity    string    `json:"identity"`
		Timezone    string    `json:"timezone"`
		Schedule    []int     `json:"schedule"`
		IncludeDate bool      `json:"include_date"`
		IncludeIPA  bool      `json:"include_ipa"`
		DateOrder   string    `json:"date_order"`
		DateStyle   string    `json:"date_style"`
		Silent      bool      `json:"silent"`
		CreatedAt   time.Time `json:"created_at"`
	}

	SubscriptionPatchRequest struct {
		Timezone    *string `json:"timezone,omitempty" validate:"omitempty,min=1"`
		Schedule    []int   `json:"schedule,omitempty" validate:"omitempty,len=7,dive,min=0,max=1439"`
		IncludeDate *bool   `json:"include_date,omitempty"`
		IncludeIPA  *bool   `json:"include_ipa,omitempty"`
		DateOrder   *string `json:"date_order,omitempty" validate:"omitempty,oneof=dmy mdy"`
		DateStyle   *string `json:"date_style,omitempty" validate:"omitempty,oneof=long medium short slash"`
		Silent      *bool   `json:"silent,omitempty"`
	}

	SubscriptionHandler struct {
		store *subscription.Store
		log   *slog.Logger
	}
)

func NewSubscriptionHandler(store *subscription.Store, log *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		store: store,
		log:   log,
	}
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	id := appctx.MustIdentityFromContext(c.Request().Context())

	sub, ok := h.store.Get(id)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Message: "not subscribed"})
	}

	return c.JSON(http.StatusOK, toView(sub))
}

func (h *SubscriptionHandler) Patch(c echo.Context) error {
	id := appctx.MustIdentityFromContext(c.Request().Context())

	var req SubscriptionPatchRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	patch, err := toPatch(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	}

	if err := h.store.Configure(c.Request().Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotSubscribed):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "not subscribed"})
		case errors.Is(err, subscription.ErrInvalidTimezone):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unknown timezone"})
		}

		h.log.ErrorContext(c.Request().Context(), "failed to configure subscription", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	sub, _ := h.store.Get(id)
	return c.JSON(http.StatusOK, toView(sub))
}

func (h *SubscriptionHandler) Delete(c echo.Context) error {
	id := appctx.MustIdentityFromContext(c.Request().Context())

	if err := h.store.Unsubscribe(c.Request().Context(), id); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to unsubscribe", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func toView(sub dal.Subscriber) SubscriptionView {
	schedule := make([]int, len(sub.Schedule))
	copy(schedule, sub.Schedule[:])
	return SubscriptionView{
		Identity:    sub.Identity.Key(),
		Timezone:    sub.Timezone,
		Schedule:    schedule,
		IncludeDate: sub.Prefs.IncludeDate,
		IncludeIPA:  sub.Prefs.IncludeIPA,
		DateOrder:   sub.Prefs.DateOrder.String(),
		DateStyle:   sub.Prefs.DateStyle.String(),
		Silent:      sub.Prefs.Silent,
		CreatedAt:   sub.CreatedAt,
	}
}

func toPatch(req SubscriptionPatchRequest) (dal.SubscriberPatch, error) {
	patch := dal.SubscriberPatch{
		Timezone:    req.Timezone,
		IncludeDate: req.IncludeDate,
		IncludeIPA:  req.IncludeIPA,
		Silent:      req.Silent,
	}

	if req.Schedule != nil {
		var schedule [7]int
		copy(schedule[:], req.Schedule)
		patch.Schedule = &schedule
	}
	if req.DateOrder != nil {
		order, err := dal.ParseDateOrder(*req.DateOrder)
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		patch.DateOrder = &order
	}
	if req.DateStyle != nil {
		style, err := dal.ParseDateStyle(*req.DateStyle)
		if err != nil {
			return dal.SubscriberPatch{}, err
		}
		patch.DateStyle = &style
	}

	return patch, nil
}
