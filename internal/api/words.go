package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	appctx "github.com/lexibot/word-of-the-day-bot/internal/context"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
	"github.com/lexibot/word-of-the-day-bot/internal/words"
)

type (
	WordView struct {
		Date         string `json:"date"`
		Word         string `json:"word"`
		IPA          string `json:"ipa,omitempty"`
		PartOfSpeech string `json:"part_of_speech,omitempty"`
		Definition   string `json:"definition"`
	}

	WordQueryParams struct {
		Date string `query:"date" validate:"required,datetime=2006-01-02"`
	}

	WordSearchParams struct {
		Word string `query:"word" validate:"required,min=1"`
	}

	WordsHandler struct {
		words *words.Source
		store *subscription.Store
		log   *slog.Logger
	}
)

func NewWordsHandler(words *words.Source, store *subscription.Store, log *slog.Logger) *WordsHandler {
	return &WordsHandler{
		words: words,
		store: store,
		log:   log,
	}
}

// Today resolves "today" in the subscriber's timezone, not the server's.
func (h *WordsHandler) Today(c echo.Context) error {
	id := appctx.MustIdentityFromContext(c.Request().Context())

	loc := time.UTC
	if sub, ok := h.store.Get(id); ok {
		if l, err := time.LoadLocation(sub.Timezone); err == nil {
			loc = l
		}
	}

	return h.wordByDate(c, time.Now().In(loc).Format(dal.DateLayout))
}

func (h *WordsHandler) ByDate(c echo.Context) error {
	var qp WordQueryParams
	if err := c.Bind(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	if qp.Date > time.Now().UTC().Format(dal.DateLayout) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Message: "date is in the future"})
	}

	return h.wordByDate(c, qp.Date)
}

func (h *WordsHandler) Search(c echo.Context) error {
	var qp WordSearchParams
	if err := c.Bind(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&qp); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	dates, err := h.words.FindDates(c.Request().Context(), qp.Word)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find word dates", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"word":  qp.Word,
		"dates": dates,
	})
}

func (h *WordsHandler) wordByDate(c echo.Context, date string) error {
	entry, err := h.words.WordForDate(c.Request().Context(), date)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to get word", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	if entry == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Message: "no word for " + date})
	}

	return c.JSON(http.StatusOK, WordView{
		Date:         entry.Date,
		Word:         entry.Word,
		IPA:          entry.IPA,
		PartOfSpeech: entry.PartOfSpeech,
		Definition:   entry.Definition,
	})
}
