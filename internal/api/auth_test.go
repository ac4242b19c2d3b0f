package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lexibot/word-of-the-day-bot/internal/config"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type fakeLinkRepo struct {
	links map[string]dal.ConfigLink
}

func (r *fakeLinkRepo) InsertConfigLink(_ context.Context, link dal.ConfigLink) error {
	r.links[link.Token] = link
	return nil
}

func (r *fakeLinkRepo) FindConfigLink(_ context.Context, token string) (*dal.ConfigLink, error) {
	link, ok := r.links[token]
	if !ok {
		return nil, dal.ErrNotFound
	}
	return &link, nil
}

func (r *fakeLinkRepo) DeleteConfigLink(_ context.Context, token string) error {
	delete(r.links, token)
	return nil
}

func newClaimTest(t *testing.T) (*AuthHandler, *fakeLinkRepo, *echo.Echo) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	links := &fakeLinkRepo{links: make(map[string]dal.ConfigLink)}
	handler := NewAuthHandler(AuthDependencies{
		Links:            links,
		JWTProcessor:     NewJWTProcessor(testJWTConfig(), time.Hour),
		CookiesProcessor: NewCookiesProcessor(config.Cookie{Path: "/", Domain: "example.com", AccessExpiresIn: time.Hour}),
		Logger:           log,
	})

	e := echo.New()
	e.Validator = NewValidator()
	return handler, links, e
}

func claim(e *echo.Echo, handler *AuthHandler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/config/claim", strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if err := handler.Claim(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestClaimIsSingleUse(t *testing.T) {
	handler, links, e := newClaimTest(t)

	token := uuid.NewString()
	links.links[token] = dal.ConfigLink{
		Token:     token,
		Identity:  dal.UserIdentity(42),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}

	rec := claim(e, handler, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("first claim status = %d, want 200", rec.Code)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("no access cookie set")
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Error("access cookie is not HttpOnly+Secure")
	}

	if rec := claim(e, handler, token); rec.Code != http.StatusForbidden {
		t.Errorf("second claim status = %d, want 403", rec.Code)
	}
}

func TestClaimExpiredLink(t *testing.T) {
	handler, links, e := newClaimTest(t)

	token := uuid.NewString()
	links.links[token] = dal.ConfigLink{
		Token:     token,
		Identity:  dal.UserIdentity(42),
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-45 * time.Minute),
	}

	if rec := claim(e, handler, token); rec.Code != http.StatusForbidden {
		t.Errorf("claim of expired link status = %d, want 403", rec.Code)
	}
	if _, ok := links.links[token]; ok {
		t.Error("expired link was not consumed")
	}
}

func TestClaimUnknownToken(t *testing.T) {
	handler, _, e := newClaimTest(t)

	if rec := claim(e, handler, uuid.NewString()); rec.Code != http.StatusForbidden {
		t.Errorf("claim of unknown token status = %d, want 403", rec.Code)
	}
}

func TestClaimRejectsMalformedToken(t *testing.T) {
	handler, _, e := newClaimTest(t)

	if rec := claim(e, handler, "not-a-uuid"); rec.Code != http.StatusBadRequest {
		t.Errorf("claim of malformed token status = %d, want 400", rec.Code)
	}
}
