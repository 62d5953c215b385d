package grade

import (
	"time"

	"github.com/volatiletech/null/v8"

	"sekolahku/core"
)

// An absent score is "ungraded", a state distinct from 0; null.Float64 keeps
// that distinction all the way from the store to the JSON payload.
type (
	// MidFinal holds a student's mid-semester (UTS) and end-semester (UAS)
	// examination scores for one subject. Unique per (student, subject).
	MidFinal struct {
		ID        string       `json:"id"`
		StudentID string       `json:"student_id"`
		SubjectID string       `json:"subject_id"`
		UTS       null.Float64 `json:"uts_score"`
		UAS       null.Float64 `json:"uas_score"`
		CreatedAt time.Time    `json:"created_at"` // UTC
		UpdatedAt time.Time    `json:"updated_at"` // UTC
	}

	// Daily holds one recurring quiz/assignment score, grouped by category.
	// Unique per (student, subject, category).
	Daily struct {
		ID           string       `json:"id"`
		StudentID    string       `json:"student_id"`
		SubjectID    string       `json:"subject_id"`
		CategoryName string       `json:"category_name"`
		Score        null.Float64 `json:"score"`
		CreatedAt    time.Time    `json:"created_at"` // UTC
		UpdatedAt    time.Time    `json:"updated_at"` // UTC
	}

	// Category is one slot of the toggleable ordered set of daily-grade
	// categories. Deactivating a category hides it from entry and excludes it
	// from averages; its historical rows persist.
	Category struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Active   bool   `json:"active"`
		Position int    `json:"position"`
	}
)

func (g MidFinal) StudentRef() string { return g.StudentID }
func (g Daily) StudentRef() string    { return g.StudentID }

// Average is (UTS+UAS)/2, defined only when both scores are present and in
// range; it never partial-averages a single score.
func (g MidFinal) Average() null.Float64 {
	if !scoreInRange(g.UTS) || !scoreInRange(g.UAS) {
		return null.Float64{}
	}
	return null.Float64From((g.UTS.Float64 + g.UAS.Float64) / 2)
}

// scoreInRange reports whether a score is present and within [0,100].
// Out-of-range values are rejected at the write boundary; if one slips in it
// degrades to ungraded here rather than poisoning an average.
func scoreInRange(score null.Float64) bool {
	return score.Valid && score.Float64 >= 0 && score.Float64 <= 100
}

// UpsertMidFinalGrade is the write payload for a (student, subject) UTS/UAS row.
type UpsertMidFinalGrade struct {
	StudentID string       `json:"student_id" validate:"required"`
	SubjectID string       `json:"subject_id" validate:"required"`
	UTS       null.Float64 `json:"uts_score" validate:"omitempty,score"`
	UAS       null.Float64 `json:"uas_score" validate:"omitempty,score"`
}

func (ug UpsertMidFinalGrade) Validate() error { return core.Validate.Struct(ug) }

// UpsertDailyGrade is the write payload for a (student, subject, category) daily row.
type UpsertDailyGrade struct {
	StudentID    string       `json:"student_id" validate:"required"`
	SubjectID    string       `json:"subject_id" validate:"required"`
	CategoryName string       `json:"category_name" validate:"required"`
	Score        null.Float64 `json:"score" validate:"omitempty,score"`
}

func (ug UpsertDailyGrade) Validate() error { return core.Validate.Struct(ug) }
