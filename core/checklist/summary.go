package checklist

import "time"

// Completion statuses
const (
	StatusComplete         = "complete"
	StatusRequiredComplete = "required-complete"
	StatusIncomplete       = "incomplete"
)

type (
	// ItemStatus is a catalog item joined with one parent's check-in state.
	ItemStatus struct {
		Item
		Checked bool `json:"checked"`
		Overdue bool `json:"overdue"`
	}

	// Summary is one parent's completion view over the catalog. Rates are
	// percentages; an empty catalog yields 0, not NaN.
	Summary struct {
		ParentID        string       `json:"parent_id"`
		ParentName      string       `json:"parent_name,omitempty"`
		StudentID       string       `json:"student_id,omitempty"`
		TotalItems      int          `json:"total_items"`
		CheckedItems    int          `json:"checked_items"`
		RequiredItems   int          `json:"required_items"`
		RequiredChecked int          `json:"required_checked"`
		CompletionRate  float64      `json:"completion_rate"`
		RequiredRate    float64      `json:"required_rate"`
		Status          string       `json:"status"`
		Items           []ItemStatus `json:"items,omitempty"`
		LastUpdatedAt   time.Time    `json:"last_updated_at"`
	}

	CategoryStat struct {
		Category string  `json:"category"`
		Slots    int     `json:"slots"` // parents x items in category
		Checked  int     `json:"checked"`
		Rate     float64 `json:"rate"`
	}

	// Recap is the admin roll-up across all parents.
	Recap struct {
		TotalParents       int            `json:"total_parents"`
		CompleteParents    int            `json:"complete_parents"`
		AverageCompletion  float64        `json:"average_completion"`
		RequiredCompletion float64        `json:"required_completion"`
		PerCategory        []CategoryStat `json:"per_category"`
		Summaries          []Summary      `json:"summaries"`
	}
)

func (s Summary) ParentRef() string { return s.ParentID }

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Summarize computes one parent's completion view. Pure: the clock is an
// explicit parameter, used only for overdue flags.
func Summarize(state State, catalog []Item, now time.Time) Summary {
	smr := Summary{
		ParentID:      state.ParentID,
		ParentName:    state.ParentName,
		StudentID:     state.StudentID,
		TotalItems:    len(catalog),
		LastUpdatedAt: state.LastUpdatedAt,
		Items:         make([]ItemStatus, 0, len(catalog)),
	}

	for _, it := range catalog {
		checked := state.Checked(it.ID)
		if checked {
			smr.CheckedItems++
		}
		if it.Required {
			smr.RequiredItems++
			if checked {
				smr.RequiredChecked++
			}
		}
		smr.Items = append(smr.Items, ItemStatus{
			Item:    it,
			Checked: checked,
			Overdue: it.Overdue(checked, now),
		})
	}

	smr.CompletionRate = percentage(smr.CheckedItems, smr.TotalItems)
	smr.RequiredRate = percentage(smr.RequiredChecked, smr.RequiredItems)

	switch {
	case smr.TotalItems > 0 && smr.CheckedItems == smr.TotalItems:
		smr.Status = StatusComplete
	case smr.RequiredItems > 0 && smr.RequiredChecked == smr.RequiredItems:
		smr.Status = StatusRequiredComplete
	default:
		smr.Status = StatusIncomplete
	}
	return smr
}

// SummarizeAll computes the admin recap over every parent's state. Zero
// parents degrades to an all-zero recap.
func SummarizeAll(states []State, catalog []Item, now time.Time) Recap {
	recap := Recap{
		TotalParents: len(states),
		Summaries:    make([]Summary, 0, len(states)),
	}

	itemsByCategory := make(map[string]int)
	requiredItems := 0
	for _, it := range catalog {
		itemsByCategory[it.Category]++
		if it.Required {
			requiredItems++
		}
	}

	var totalChecked, totalRequiredChecked int
	checkedByCategory := make(map[string]int)
	catalogByID := make(map[string]Item, len(catalog))
	for _, it := range catalog {
		catalogByID[it.ID] = it
	}

	for _, state := range states {
		smr := Summarize(state, catalog, now)
		recap.Summaries = append(recap.Summaries, smr)

		totalChecked += smr.CheckedItems
		totalRequiredChecked += smr.RequiredChecked
		if smr.Status == StatusComplete {
			recap.CompleteParents++
		}
		for _, id := range state.CheckedItemIDs {
			if it, ok := catalogByID[id]; ok {
				checkedByCategory[it.Category]++
			}
		}
	}

	recap.AverageCompletion = percentage(totalChecked, len(states)*len(catalog))
	recap.RequiredCompletion = percentage(totalRequiredChecked, len(states)*requiredItems)

	recap.PerCategory = make([]CategoryStat, 0, len(AllCategories))
	for _, category := range AllCategories {
		slots := len(states) * itemsByCategory[category]
		recap.PerCategory = append(recap.PerCategory, CategoryStat{
			Category: category,
			Slots:    slots,
			Checked:  checkedByCategory[category],
			Rate:     percentage(checkedByCategory[category], slots),
		})
	}
	return recap
}
