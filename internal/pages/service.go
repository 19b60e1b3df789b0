package pages

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"pagesmith/app/internal/genai"
	"pagesmith/app/internal/metrics"
	"pagesmith/app/internal/sanitize"
)

// ErrInvalidRequest reports a publish precondition violation. The wrapped
// message names the offending field.
var ErrInvalidRequest = eris.New("invalid page request")

const (
	promptMinLength = 10
	promptMaxLength = 5000
	tagMaxLength    = 50
	emailMaxLength  = 254

	defaultPageType = "other"
	defaultTheme    = "modern"
)

// PublishRequest carries the inbound fields for a page publication.
type PublishRequest struct {
	Email    string
	Prompt   string
	PageType string
	Theme    string
}

// Service defines the publication workflow and read operations on published
// pages.
type Service interface {
	Publish(ctx context.Context, req PublishRequest) (*Page, error)
	Render(ctx context.Context, id string) (*Page, error)
	RecordView(ctx context.Context, id string) (int64, error)
	History(ctx context.Context, email string) ([]Page, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type service struct {
	repo      Repository
	generator genai.Generator
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	recorder  *metrics.Recorder
}

var _ Service = (*service)(nil)

// NewService wires the page service with its dependencies.
func NewService(repo Repository, generator genai.Generator, logger *logrus.Logger, hub *sentry.Hub, recorder *metrics.Recorder) (Service, error) {
	if repo == nil {
		return nil, eris.New("page repository is required")
	}
	if generator == nil {
		return nil, eris.New("content generator is required")
	}

	return &service{
		repo:      repo,
		generator: generator,
		logger:    logger,
		sentryHub: hub,
		recorder:  recorder,
	}, nil
}

// Publish runs the full pipeline: validate, generate, sanitize, persist.
// Every stored document passes through the sanitizer, the fallback path
// included; there is no branch that persists gateway output directly.
func (s *service) Publish(ctx context.Context, req PublishRequest) (*Page, error) {
	normalized, err := normalizeRequest(req)
	if err != nil {
		s.recorder.ObservePublish(metrics.OutcomeInvalid)
		return nil, err
	}

	generationStart := time.Now()
	doc, err := s.generator.Generate(ctx, normalized.Prompt, normalized.PageType, normalized.Theme)
	if err != nil {
		// the gateway absorbs upstream failures; an error here is a
		// caller contract violation and must not reach storage
		s.recordError(logrus.Fields{"email": normalized.Email}, err, "generating page content")
		return nil, eris.Wrap(err, "generating page content")
	}
	s.recorder.ObserveGeneration(time.Since(generationStart), doc.Degraded)

	sanitizeStart := time.Now()
	clean := sanitize.Sanitize(doc.HTML)
	s.recorder.ObserveSanitize(time.Since(sanitizeStart))

	page := &Page{
		ID:          uuid.NewString(),
		Email:       normalized.Email,
		Prompt:      normalized.Prompt,
		PageType:    normalized.PageType,
		Theme:       normalized.Theme,
		HTMLContent: clean,
		IsPublic:    true,
		MetaData: map[string]any{
			"version":      "1.1",
			"provider":     "openrouter",
			"model":        doc.Model,
			"degraded":     doc.Degraded,
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := s.repo.Create(ctx, page); err != nil {
		s.recorder.ObservePublish(metrics.OutcomeStorageError)
		s.recordError(logrus.Fields{"page_id": page.ID}, err, "persisting published page")
		return nil, eris.Wrapf(err, "persisting published page: %s", page.ID)
	}

	s.recorder.ObservePublish(metrics.OutcomeCreated)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"page_id":   page.ID,
			"page_type": page.PageType,
			"degraded":  doc.Degraded,
		}).Info("page published")
	}

	return page, nil
}

// Render loads a published page and counts the view. ErrPageNotFound covers
// missing, malformed and non-public identifiers alike.
func (s *service) Render(ctx context.Context, id string) (*Page, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordError(logrus.Fields{"page_id": id}, err, "loading page for render")
		return nil, eris.Wrap(err, "loading page for render")
	}

	if page == nil || !page.IsPublic {
		return nil, eris.Wrap(ErrPageNotFound, "rendering page")
	}

	count, err := s.repo.IncrementViewCount(ctx, page.ID)
	if err != nil {
		if eris.Is(err, ErrPageNotFound) {
			return nil, err
		}
		s.recordError(logrus.Fields{"page_id": page.ID}, err, "counting page view")
		return nil, eris.Wrap(err, "counting page view")
	}

	s.recorder.ObservePageView()
	page.ViewCount = count
	return page, nil
}

// RecordView bumps the view counter without loading the document.
func (s *service) RecordView(ctx context.Context, id string) (int64, error) {
	count, err := s.repo.IncrementViewCount(ctx, id)
	if err != nil {
		if !eris.Is(err, ErrPageNotFound) {
			s.recordError(logrus.Fields{"page_id": id}, err, "recording page view")
		}
		return 0, err
	}

	s.recorder.ObservePageView()
	return count, nil
}

func (s *service) History(ctx context.Context, email string) ([]Page, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return nil, eris.Wrap(ErrInvalidRequest, "email is required")
	}

	result, err := s.repo.ListByEmail(ctx, trimmed)
	if err != nil {
		s.recordError(logrus.Fields{"email": trimmed}, err, "listing page history")
		return nil, eris.Wrap(err, "listing page history")
	}

	return result, nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.recordError(nil, err, "aggregating dashboard stats")
		return nil, eris.Wrap(err, "aggregating dashboard stats")
	}

	return stats, nil
}

func normalizeRequest(req PublishRequest) (PublishRequest, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.PageType = strings.TrimSpace(req.PageType)
	req.Theme = strings.TrimSpace(req.Theme)

	if req.Email == "" || utf8.RuneCountInString(req.Email) > emailMaxLength || !strings.Contains(req.Email, "@") {
		return req, eris.Wrap(ErrInvalidRequest, "a valid email is required")
	}

	promptLength := utf8.RuneCountInString(req.Prompt)
	if promptLength < promptMinLength {
		return req, eris.Wrapf(ErrInvalidRequest, "prompt must be at least %d characters", promptMinLength)
	}
	if promptLength > promptMaxLength {
		return req, eris.Wrapf(ErrInvalidRequest, "prompt exceeds maximum length of %d characters", promptMaxLength)
	}

	if req.PageType == "" {
		req.PageType = defaultPageType
	}
	if utf8.RuneCountInString(req.PageType) > tagMaxLength {
		return req, eris.Wrapf(ErrInvalidRequest, "page_type exceeds maximum length of %d characters", tagMaxLength)
	}

	if req.Theme == "" {
		req.Theme = defaultTheme
	}
	if utf8.RuneCountInString(req.Theme) > tagMaxLength {
		return req, eris.Wrapf(ErrInvalidRequest, "theme exceeds maximum length of %d characters", tagMaxLength)
	}

	return req, nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
