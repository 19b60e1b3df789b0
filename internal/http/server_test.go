package http

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pagesmith/app/internal/pages"
)

func TestHomeRouteRendersLandingPage(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{stats: &pages.DashboardStats{TotalPages: 42, TotalViews: 99}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "PageSmith") {
		t.Fatalf("expected body to contain site title, got %q", body)
	}
	if !strings.Contains(body, "42") || !strings.Contains(body, "99") {
		t.Fatalf("expected stats in body, got %q", body)
	}
}

func TestGenerateRouteCreatesPage(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{
		page: &pages.Page{
			ID:        "aaaaaaaa-0000-0000-0000-000000000001",
			Email:     "alice@example.com",
			PageType:  "other",
			Theme:     "modern",
			CreatedAt: time.Now().UTC(),
		},
	}
	srv := newTestServer(t, svc)

	payload := `{"email":"alice@example.com","prompt":"a portfolio page for a photographer"}`
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 201 {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"id":"aaaaaaaa-0000-0000-0000-000000000001"`) {
		t.Fatalf("expected page id in response, got %q", body)
	}
	if !strings.Contains(body, `"live_url":"/p/aaaaaaaa-0000-0000-0000-000000000001"`) {
		t.Fatalf("expected live url in response, got %q", body)
	}
	if svc.lastPublish.Email != "alice@example.com" {
		t.Fatalf("expected publish request forwarded, got %#v", svc.lastPublish)
	}
}

func TestGenerateRouteRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{publishErr: eris.Wrap(pages.ErrInvalidRequest, "prompt must be at least 10 characters")}
	srv := newTestServer(t, svc)

	payload := `{"email":"alice@example.com","prompt":"short"}`
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateRouteReportsStorageFailure(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{publishErr: eris.New("disk full")}
	srv := newTestServer(t, svc)

	payload := `{"email":"alice@example.com","prompt":"a portfolio page for a photographer"}`
	req := httptest.NewRequest("POST", "/api/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGeneratePromptRouteComposesPrompt(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPageService{})

	payload := `{"occasion":"birthday","title":"Sam turns 30","theme":"playful","details":{"date":"June 7th"}}`
	req := httptest.NewRequest("POST", "/api/generate-prompt", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Sam turns 30") {
		t.Fatalf("expected title in composed prompt, got %q", body)
	}
	if !strings.Contains(body, "Birthday") {
		t.Fatalf("expected occasion in composed prompt, got %q", body)
	}
}

func TestGeneratePromptRouteRequiresTitle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPageService{})

	payload := `{"title":"   "}`
	req := httptest.NewRequest("POST", "/api/generate-prompt", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHistoryRouteListsPages(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{
		history: []pages.Page{{
			ID:       "aaaaaaaa-0000-0000-0000-000000000001",
			Email:    "alice@example.com",
			Prompt:   "a portfolio page",
			PageType: "other",
			Theme:    "modern",
		}},
	}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/api/history?email=alice@example.com", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"live_url":"/p/aaaaaaaa-0000-0000-0000-000000000001"`) {
		t.Fatalf("expected live url in history, got %q", rec.Body.String())
	}
}

func TestHistoryRouteRequiresEmail(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{historyErr: eris.Wrap(pages.ErrInvalidRequest, "email is required")}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/api/history", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDashboardRouteReportsStats(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{stats: &pages.DashboardStats{TotalPages: 7, PagesToday: 2, TotalViews: 31, UniqueUsers: 4}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, fragment := range []string{`"totalPages":7`, `"pagesToday":2`, `"totalViews":31`, `"uniqueUsers":4`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %s in response, got %q", fragment, body)
		}
	}
}

func TestPageRouteServesHTMLVerbatim(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{page: &pages.Page{ID: "x", HTMLContent: "<!DOCTYPE html><html><head></head><body><p>Alpha</p></body></html>"}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/p/aaaaaaaa-0000-0000-0000-000000000001", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}
	if rec.Body.String() != svc.page.HTMLContent {
		t.Fatalf("expected stored document verbatim, got %q", rec.Body.String())
	}
}

func TestPageRouteReturns404ForUnknownPage(t *testing.T) {
	t.Parallel()

	svc := &stubPageService{renderErr: eris.Wrap(pages.ErrPageNotFound, "rendering page")}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest("GET", "/p/not-a-real-page", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}
	if !strings.Contains(rec.Body.String(), "no longer public") {
		t.Fatalf("expected helpful message in body, got %q", rec.Body.String())
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPageService{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	t.Parallel()

	srv := newTestServerWithLimit(t, &stubPageService{stats: &pages.DashboardStats{}}, RateLimiterSettings{
		RequestsPerSecond: 0.001,
		Burst:             1,
		ClientTTL:         time.Minute,
	})

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest("GET", "/", nil))
	if first.Code != 200 {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest("GET", "/", nil))
	if second.Code != 429 {
		t.Fatalf("expected second request to be limited, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on limited response")
	}
}

// helper utilities

func newTestServer(t *testing.T, svc pages.Service) *Server {
	t.Helper()

	return newTestServerWithLimit(t, svc, RateLimiterSettings{
		RequestsPerSecond: 100,
		Burst:             100,
		ClientTTL:         time.Minute,
	})
}

func newTestServerWithLimit(t *testing.T, svc pages.Service, settings RateLimiterSettings) *Server {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open returned error: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(Options{
		PageService: svc,
		Database:    gormDB,
		Logger:      logger,
		RateLimiter: settings,
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	return srv
}

// stubs

type stubPageService struct {
	page        *pages.Page
	publishErr  error
	renderErr   error
	history     []pages.Page
	historyErr  error
	stats       *pages.DashboardStats
	statsErr    error
	lastPublish pages.PublishRequest
}

func (s *stubPageService) Publish(_ context.Context, req pages.PublishRequest) (*pages.Page, error) {
	s.lastPublish = req
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	return s.page, nil
}

func (s *stubPageService) Render(_ context.Context, _ string) (*pages.Page, error) {
	if s.renderErr != nil {
		return nil, s.renderErr
	}
	return s.page, nil
}

func (s *stubPageService) RecordView(_ context.Context, _ string) (int64, error) {
	if s.renderErr != nil {
		return 0, s.renderErr
	}
	return 1, nil
}

func (s *stubPageService) History(_ context.Context, _ string) ([]pages.Page, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *stubPageService) DashboardStats(_ context.Context) (*pages.DashboardStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	if s.stats != nil {
		return s.stats, nil
	}
	return &pages.DashboardStats{}, nil
}

var _ pages.Service = (*stubPageService)(nil)
