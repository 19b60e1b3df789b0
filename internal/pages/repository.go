package pages

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrPageNotFound reports that no published page exists under an identifier.
// Malformed and simply unassigned identifiers are indistinguishable through
// this error so page IDs stay non-enumerable.
var ErrPageNotFound = eris.New("page not found")

// Repository defines persistence operations for published pages.
type Repository interface {
	Create(ctx context.Context, page *Page) error
	GetByID(ctx context.Context, id string) (*Page, error)
	IncrementViewCount(ctx context.Context, id string) (int64, error)
	ListByEmail(ctx context.Context, email string) ([]Page, error)
	Stats(ctx context.Context) (*DashboardStats, error)
}

// DashboardStats aggregates publication and traffic counters for the
// dashboard endpoint.
type DashboardStats struct {
	TotalPages  int64
	PagesToday  int64
	TotalViews  int64
	UniqueUsers int64
}

// GormRepository persists pages using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ Repository = (*GormRepository)(nil)

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger}, nil
}

// Create inserts a new page record. The record is immutable after this call
// except for its view counter.
func (r *GormRepository) Create(ctx context.Context, page *Page) error {
	if page == nil {
		return eris.New("page is nil")
	}

	if strings.TrimSpace(page.ID) == "" {
		return eris.New("page id is required")
	}

	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		r.logError(logrus.Fields{"page_id": page.ID}, err, "creating page")
		return eris.Wrapf(err, "creating page: %s", page.ID)
	}

	return nil
}

// GetByID returns the page for the provided identifier or nil when not found.
func (r *GormRepository) GetByID(ctx context.Context, id string) (*Page, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, nil
	}

	var page Page
	err := r.db.WithContext(ctx).First(&page, "id = ?", trimmed).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"page_id": trimmed}, err, "fetching page by id")
		return nil, eris.Wrapf(err, "fetching page by id: %s", trimmed)
	}

	return &page, nil
}

// IncrementViewCount bumps the view counter in a single relative-to-current
// UPDATE so concurrent renders never lose updates, and returns the
// post-increment count. Unknown, malformed and non-public identifiers all
// collapse to ErrPageNotFound.
func (r *GormRepository) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return 0, eris.Wrap(ErrPageNotFound, "incrementing view count")
	}

	var count int64
	result := r.db.WithContext(ctx).Raw(
		"UPDATE pages SET view_count = view_count + 1 WHERE id = ? AND is_public = ? RETURNING view_count",
		trimmed, true,
	).Scan(&count)

	if result.Error != nil {
		r.logError(logrus.Fields{"page_id": trimmed}, result.Error, "incrementing view count")
		return 0, eris.Wrapf(result.Error, "incrementing view count: %s", trimmed)
	}

	if result.RowsAffected == 0 {
		return 0, eris.Wrap(ErrPageNotFound, "incrementing view count")
	}

	return count, nil
}

// ListByEmail returns the page history for an email, newest first, without
// document bodies.
func (r *GormRepository) ListByEmail(ctx context.Context, email string) ([]Page, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, eris.New("email is required")
	}

	var result []Page
	err := r.db.WithContext(ctx).
		Model(&Page{}).
		Select("id", "email", "prompt", "page_type", "theme", "is_public", "view_count", "created_at").
		Where("email = ?", trimmed).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		r.logError(logrus.Fields{"email": trimmed}, err, "listing pages by email")
		return nil, eris.Wrapf(err, "listing pages for email: %s", trimmed)
	}

	return result, nil
}

// Stats aggregates publication counters for the dashboard.
func (r *GormRepository) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	conn := r.db.WithContext(ctx)

	if err := conn.Model(&Page{}).Count(&stats.TotalPages).Error; err != nil {
		r.logError(nil, err, "counting pages")
		return nil, eris.Wrap(err, "counting pages")
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	if err := conn.Model(&Page{}).Where("created_at >= ?", startOfDay).Count(&stats.PagesToday).Error; err != nil {
		r.logError(nil, err, "counting pages created today")
		return nil, eris.Wrap(err, "counting pages created today")
	}

	if err := conn.Model(&Page{}).Select("COALESCE(SUM(view_count), 0)").Scan(&stats.TotalViews).Error; err != nil {
		r.logError(nil, err, "summing view counts")
		return nil, eris.Wrap(err, "summing view counts")
	}

	if err := conn.Model(&Page{}).Distinct("email").Count(&stats.UniqueUsers).Error; err != nil {
		r.logError(nil, err, "counting unique users")
		return nil, eris.Wrap(err, "counting unique users")
	}

	return stats, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
