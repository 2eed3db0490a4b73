package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"

	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Course struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	Discount      float64     `json:"discount"`
	Level         string      `json:"level"`
	Status        string      `json:"status"`
	LogoObjectKey string      `json:"-"`
	LogoURL       string      `json:"logo_url,omitempty"`
	Rating        float64     `json:"rating"`
	ReviewCount   int         `json:"review_count"`
	ChapterIDs    []uuid.UUID `json:"chapters"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// EffectivePrice applies the percent discount.
func (c Course) EffectivePrice() float64 {
	return RoundMoney(c.Price * (1 - c.Discount/100))
}

type CourseFilter struct {
	Query  string
	Level  string
	Status string
	Limit  int
	Offset int
}

type CourseUpdate struct {
	Title       *string
	Slug        *string
	Description *string
	Price       *float64
	Discount    *float64
	Level       *string
}

func ValidCourseStatus(s string) bool {
	return s == CourseStatusDraft || s == CourseStatusPublished || s == CourseStatusArchived
}

func ValidLevel(s string) bool {
	return s == LevelBeginner || s == LevelIntermediate || s == LevelAdvanced
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
