package files

import (
	"fmt"
	"strings"
	"time"

	"github.com/docdrop/server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultPageSize is the fixed page size for file listings.
const DefaultPageSize = 10

// Size bucket boundaries. A file of exactly 1 MiB or exactly 10 MiB is
// medium.
const (
	sizeSmallMax  = 1 << 20  // 1,048,576
	sizeMediumMax = 10 << 20 // 10,485,760
)

// ListParams is the bag of optional listing criteria. OwnerID is the only
// mandatory field and must come from the authenticated session, never from
// the request body. Empty or unrecognized values impose no constraint.
type ListParams struct {
	OwnerID uuid.UUID
	// Search matches records whose name contains the substring,
	// case-insensitively.
	Search string
	// Type is an exact match against the stored lowercase extension.
	Type string
	// DateBucket is one of today, week, month, year.
	DateBucket string
	// SizeBucket is one of small, medium, large.
	SizeBucket string
	// SortField must be one of name, type, size, created_at; anything else
	// falls back to created_at.
	SortField string
	// SortDir is asc or desc; anything else falls back to desc.
	SortDir string
	// Page is 1-based. Out-of-range pages return an empty page.
	Page     int
	PageSize int
}

// Filters echoes the criteria the query actually applied, normalized, so the
// caller can preserve filter state across page navigation.
type Filters struct {
	Search        string `json:"search"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Size          string `json:"size"`
	SortField     string `json:"sort_field"`
	SortDirection string `json:"sort_direction"`
}

// Page is one page of a file listing plus the metadata needed to render
// pagination controls.
type Page struct {
	Files      []models.File `json:"files"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
	Filters    Filters       `json:"filters"`
}

// List returns one page of the owner's files matching the given criteria.
// Malformed filter input never errors; it degrades to no filter or to the
// default sort.
func List(db *gorm.DB, p ListParams) (*Page, error) {
	return list(db, time.Now(), p)
}

func list(db *gorm.DB, now time.Time, p ListParams) (*Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	var total int64
	if err := scoped(db, now, p).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	column := sortColumn(p.SortField)
	direction := sortDirection(p.SortDir)

	records := make([]models.File, 0, p.PageSize)
	err := scoped(db, now, p).
		Order(column + " " + direction).
		Limit(p.PageSize).
		Offset((p.Page - 1) * p.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	totalPages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))

	return &Page{
		Files:      records,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
		Filters: Filters{
			Search:        p.Search,
			Type:          p.Type,
			Date:          normalizeDateBucket(p.DateBucket),
			Size:          normalizeSizeBucket(p.SizeBucket),
			SortField:     column,
			SortDirection: strings.ToLower(direction),
		},
	}, nil
}

// scoped builds the owner-restricted, filtered query. Called once for the
// count and once for the page so no pagination clauses leak between the two.
// Filter values only ever travel as bound parameters.
func scoped(db *gorm.DB, now time.Time, p ListParams) *gorm.DB {
	q := db.Model(&models.File{}).Where("user_id = ?", p.OwnerID)

	if p.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(p.Search)+"%")
	}

	if p.Type != "" {
		q = q.Where("type = ?", p.Type)
	}

	if from, to, ok := dateBucketRange(now, p.DateBucket); ok {
		q = q.Where("created_at >= ? AND created_at < ?", from, to)
	}

	switch p.SizeBucket {
	case "small":
		q = q.Where("size < ?", sizeSmallMax)
	case "medium":
		q = q.Where("size >= ? AND size <= ?", sizeSmallMax, sizeMediumMax)
	case "large":
		q = q.Where("size > ?", sizeMediumMax)
	}

	return q
}

// dateBucketRange maps a date bucket to a half-open [from, to) range around
// now. Unrecognized buckets report ok = false and impose no filter. Weeks
// start on Monday.
func dateBucketRange(now time.Time, bucket string) (from, to time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch bucket {
	case "today":
		return day, day.AddDate(0, 0, 1), true
	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday
		}
		start := day.AddDate(0, 0, 1-weekday)
		return start, start.AddDate(0, 0, 7), true
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	case "year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// sortColumn enforces the sort-field allow-list. Only these four column
// names can ever reach the ORDER BY clause; everything else, including
// crafted SQL, falls back to created_at.
func sortColumn(field string) string {
	switch field {
	case "name":
		return "name"
	case "type":
		return "type"
	case "size":
		return "size"
	case "created_at":
		return "created_at"
	}
	return "created_at"
}

// sortDirection normalizes the direction to ASC or DESC, defaulting DESC.
func sortDirection(dir string) string {
	if strings.EqualFold(dir, "asc") {
		return "ASC"
	}
	return "DESC"
}

func normalizeDateBucket(bucket string) string {
	switch bucket {
	case "today", "week", "month", "year":
		return bucket
	}
	return ""
}

func normalizeSizeBucket(bucket string) string {
	switch bucket {
	case "small", "medium", "large":
		return bucket
	}
	return ""
}
