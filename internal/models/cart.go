package models

import (
	"time"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

const (
	CartEventAdd    = "add"
	CartEventUpdate = "update"
	CartEventRemove = "remove"
	CartEventClear  = "clear"
)

type CartItem struct {
	CourseID    string  `json:"course_id" bson:"course_id"`
	CourseTitle string  `json:"course_title" bson:"course_title"`
	SessionType string  `json:"session_type" bson:"session_type"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unit_price" bson:"unit_price"`
}

type Cart struct {
	StudentID  string     `json:"student_id" bson:"student_id"`
	Items      []CartItem `json:"items" bson:"items"`
	TotalPrice float64    `json:"total_price" bson:"total_price"`
	Version    int64      `json:"-" bson:"version"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

type CartEvent struct {
	StudentID   string    `bson:"student_id"`
	Event       string    `bson:"event"`
	CourseID    string    `bson:"course_id,omitempty"`
	SessionType string    `bson:"session_type,omitempty"`
	Quantity    int       `bson:"quantity,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// Recalculate refreshes TotalPrice from the items.
func (c *Cart) Recalculate() {
	total := 0.0
	for _, it := range c.Items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	c.TotalPrice = RoundMoney(total)
}

func (c *Cart) find(courseID, sessionType string) int {
	for i, it := range c.Items {
		if it.CourseID == courseID && it.SessionType == sessionType {
			return i
		}
	}
	return -1
}

// Add merges item into an existing line or appends it. A line never grows
// past MaxQuantity.
func (c *Cart) Add(item CartItem) error {
	if item.Quantity < 1 || item.Quantity > MaxQuantity {
		return app_errors.ErrInvalidQuantity
	}
	if i := c.find(item.CourseID, item.SessionType); i >= 0 {
		if c.Items[i].Quantity > MaxQuantity-item.Quantity {
			return app_errors.ErrInvalidQuantity
		}
		c.Items[i].Quantity += item.Quantity
		c.Items[i].UnitPrice = item.UnitPrice
	} else {
		c.Items = append(c.Items, item)
	}
	c.Recalculate()
	return nil
}

func (c *Cart) SetQuantity(courseID, sessionType string, qty int) bool {
	i := c.find(courseID, sessionType)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = qty
	c.Recalculate()
	return true
}

// Remove drops the matching lines. An empty sessionType matches both.
func (c *Cart) Remove(courseID, sessionType string) bool {
	kept := c.Items[:0]
	removed := false
	for _, it := range c.Items {
		if it.CourseID == courseID && (sessionType == "" || it.SessionType == sessionType) {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	c.Recalculate()
	return removed
}
