package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"pagesmith/app/internal/db"
	"pagesmith/app/internal/genai"
	"pagesmith/app/internal/http/templates"
	"pagesmith/app/internal/pages"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
	pageNotFoundMessage  = "This page does not exist or is no longer public."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type generateInput struct {
	Body struct {
		Email    string `json:"email" doc:"Address the page is published under."`
		Prompt   string `json:"prompt" doc:"Natural-language description of the page to build."`
		PageType string `json:"page_type,omitempty" doc:"Free-form category tag."`
		Theme    string `json:"theme,omitempty" doc:"Free-form design theme tag."`
	}
}

type generateResponse struct {
	Body struct {
		ID        string    `json:"id"`
		LiveURL   string    `json:"live_url"`
		CreatedAt time.Time `json:"created_at"`
		PageType  string    `json:"page_type"`
		Theme     string    `json:"theme"`
		ViewCount int64     `json:"view_count"`
	}
}

type generatePromptInput struct {
	Body struct {
		Occasion       string            `json:"occasion,omitempty"`
		Title          string            `json:"title"`
		Theme          string            `json:"theme,omitempty"`
		Details        map[string]string `json:"details,omitempty"`
		SpecificFields map[string]string `json:"specific_fields,omitempty"`
	}
}

type generatePromptResponse struct {
	Body struct {
		Prompt string `json:"prompt"`
	}
}

type historyInput struct {
	Email string `query:"email" doc:"Address whose publications to list."`
}

type historyEntry struct {
	ID        string    `json:"id"`
	LiveURL   string    `json:"live_url"`
	Prompt    string    `json:"prompt"`
	PageType  string    `json:"page_type"`
	Theme     string    `json:"theme"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	Body struct {
		Pages []historyEntry `json:"pages"`
	}
}

type dashboardResponse struct {
	Body struct {
		TotalPages  int64 `json:"totalPages"`
		PagesToday  int64 `json:"pagesToday"`
		TotalViews  int64 `json:"totalViews"`
		UniqueUsers int64 `json:"uniqueUsers"`
	}
}

type pageInput struct {
	ID string `path:"id"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("PageSmith home", stdhttp.StatusInternalServerError))
}

func (s *Server) registerGenerateRoute() {
	huma.Post(s.api, "/api/generate", s.generateHandler, func(op *huma.Operation) {
		op.Summary = "Publish a generated page"
		op.DefaultStatus = stdhttp.StatusCreated
	})
}

func (s *Server) registerGeneratePromptRoute() {
	huma.Post(s.api, "/api/generate-prompt", s.generatePromptHandler, func(op *huma.Operation) {
		op.Summary = "Compose a generation prompt from structured fields"
	})
}

func (s *Server) registerHistoryRoute() {
	huma.Get(s.api, "/api/history", s.historyHandler, func(op *huma.Operation) {
		op.Summary = "List pages published under an email address"
	})
}

func (s *Server) registerDashboardRoute() {
	huma.Get(s.api, "/api/admin/dashboard", s.dashboardHandler, func(op *huma.Operation) {
		op.Summary = "Aggregate publication statistics"
	})
}

func (s *Server) registerPageRoute() {
	huma.Get(s.api, "/p/{id}", s.pageHandler, htmlOperation(
		"Serve a published page",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) generateHandler(ctx context.Context, input *generateInput) (*generateResponse, error) {
	page, err := s.pages.Publish(ctx, pages.PublishRequest{
		Email:    input.Body.Email,
		Prompt:   input.Body.Prompt,
		PageType: input.Body.PageType,
		Theme:    input.Body.Theme,
	})
	if err != nil {
		if eris.Is(err, pages.ErrInvalidRequest) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		s.recordError(ctx, err, "publishing page", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	resp := &generateResponse{}
	resp.Body.ID = page.ID
	resp.Body.LiveURL = liveURL(page.ID)
	resp.Body.CreatedAt = page.CreatedAt
	resp.Body.PageType = page.PageType
	resp.Body.Theme = page.Theme
	resp.Body.ViewCount = page.ViewCount

	return resp, nil
}

func (s *Server) generatePromptHandler(_ context.Context, input *generatePromptInput) (*generatePromptResponse, error) {
	if strings.TrimSpace(input.Body.Title) == "" {
		return nil, huma.Error400BadRequest("a page title is required")
	}

	prompt := genai.BuildPrompt(genai.PromptRequest{
		Occasion:       input.Body.Occasion,
		Title:          input.Body.Title,
		Theme:          input.Body.Theme,
		Details:        input.Body.Details,
		SpecificFields: input.Body.SpecificFields,
	})

	resp := &generatePromptResponse{}
	resp.Body.Prompt = prompt

	return resp, nil
}

func (s *Server) historyHandler(ctx context.Context, input *historyInput) (*historyResponse, error) {
	listed, err := s.pages.History(ctx, input.Email)
	if err != nil {
		if eris.Is(err, pages.ErrInvalidRequest) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		s.recordError(ctx, err, "listing page history", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	resp := &historyResponse{}
	resp.Body.Pages = make([]historyEntry, 0, len(listed))
	for _, page := range listed {
		resp.Body.Pages = append(resp.Body.Pages, historyEntry{
			ID:        page.ID,
			LiveURL:   liveURL(page.ID),
			Prompt:    page.Prompt,
			PageType:  page.PageType,
			Theme:     page.Theme,
			ViewCount: page.ViewCount,
			CreatedAt: page.CreatedAt,
		})
	}

	return resp, nil
}

func (s *Server) dashboardHandler(ctx context.Context, _ *struct{}) (*dashboardResponse, error) {
	stats, err := s.pages.DashboardStats(ctx)
	if err != nil {
		s.recordError(ctx, err, "aggregating dashboard stats", nil)
		return nil, huma.Error500InternalServerError(errorFallbackMessage)
	}

	resp := &dashboardResponse{}
	resp.Body.TotalPages = stats.TotalPages
	resp.Body.PagesToday = stats.PagesToday
	resp.Body.TotalViews = stats.TotalViews
	resp.Body.UniqueUsers = stats.UniqueUsers

	return resp, nil
}

func (s *Server) pageHandler(ctx context.Context, input *pageInput) (*htmlResponse, error) {
	page, err := s.pages.Render(ctx, input.ID)
	if err != nil {
		if eris.Is(err, pages.ErrPageNotFound) {
			return s.renderErrorResponse(ctx, stdhttp.StatusNotFound, pageNotFoundMessage)
		}
		s.recordError(ctx, err, "rendering published page", logrus.Fields{"page_id": input.ID})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, []byte(page.HTMLContent)), nil
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	data := templates.LandingPageData{}
	if stats, err := s.pages.DashboardStats(ctx); err != nil {
		s.recordError(ctx, err, "loading landing stats", nil)
	} else {
		data.TotalPages = stats.TotalPages
		data.TotalViews = stats.TotalViews
	}

	body, err := renderComponent(ctx, templates.LandingPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering landing page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the landing page.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func liveURL(id string) string {
	return "/p/" + id
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	title := fmt.Sprintf("%s • PageSmith", label)
	component := templates.ErrorPage(templates.ErrorPageData{
		Title:       title,
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
