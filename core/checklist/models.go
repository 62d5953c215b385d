package checklist

import (
	"time"

	"github.com/volatiletech/null/v8"

	"sekolahku/core"
)

// Item categories
const (
	CategoryAcademic       = "academic"
	CategoryAdministrative = "administrative"
	CategoryActivity       = "activity"
)

var AllCategories = []string{CategoryAcademic, CategoryAdministrative, CategoryActivity}

// Item is one entry of the static parent-checklist catalog: a confirmation or
// acknowledgment task, optionally mandatory and deadline-bound.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Required    bool      `json:"required"`
	Deadline    null.Time `json:"deadline,omitempty"`
	Position    int       `json:"position"`
}

// Overdue reports whether the item has a deadline strictly before now and is
// still unchecked. Derived state, recomputed on every read.
func (it Item) Overdue(checked bool, now time.Time) bool {
	return it.Deadline.Valid && it.Deadline.Time.Before(now) && !checked
}

// State is one parent's set of check-ins against the catalog. Mutated only by
// that parent, read in aggregate by admin.
type State struct {
	ParentID       string    `json:"parent_id"`
	ParentName     string    `json:"parent_name,omitempty"`
	StudentID      string    `json:"student_id,omitempty"`
	CheckedItemIDs []string  `json:"checked_item_ids"`
	LastUpdatedAt  time.Time `json:"last_updated_at"` // UTC
}

func (s State) ParentRef() string { return s.ParentID }

func (s State) Checked(itemID string) bool {
	for _, id := range s.CheckedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// SetChecked is the write payload for checking or unchecking one catalog item.
type SetChecked struct {
	ItemID  string `json:"item_id" validate:"required"`
	Checked bool   `json:"checked"`
}

func (sc SetChecked) Validate() error { return core.Validate.Struct(sc) }
