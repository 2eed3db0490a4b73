package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CenterPricingTitle  = "Center Pricing"
	CenterPricingButton = "Enroll at Center"
)

type PriceBlock struct {
	Title      string  `json:"title"`
	ButtonText string  `json:"button_text"`
	Price      float64 `json:"price"`
	Discount   float64 `json:"discount"`
	FinalPrice float64 `json:"final_price"`
}

type SessionPricing struct {
	Base   PriceBlock  `json:"base"`
	Center *PriceBlock `json:"center,omitempty"`
}

type Pricing struct {
	Recorded SessionPricing `json:"recorded"`
	Live     SessionPricing `json:"live"`
}

type GroupPricing struct {
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	Level        string      `json:"level"`
	CourseIDs    []uuid.UUID `json:"course_ids"`
	CourseTitles []string    `json:"course_titles,omitempty"`
	Pricing      Pricing     `json:"pricing"`
	CourseRating float64     `json:"course_rating"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func DefaultCenterBlock() *PriceBlock {
	return &PriceBlock{Title: CenterPricingTitle, ButtonText: CenterPricingButton}
}

// BackfillCenter fills missing center blocks with the default template.
func (g *GroupPricing) BackfillCenter() {
	if g.Pricing.Recorded.Center == nil {
		g.Pricing.Recorded.Center = DefaultCenterBlock()
	}
	if g.Pricing.Live.Center == nil {
		g.Pricing.Live.Center = DefaultCenterBlock()
	}
}

// BundleRating is the mean of the rated courses' ratings. Unrated courses are ignored.
func BundleRating(ratings []float64) float64 {
	sum, n := 0.0, 0
	for _, r := range ratings {
		if r > 0 {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return Round1(sum / float64(n))
}
