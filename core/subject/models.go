package subject

import (
	"time"

	"sekolahku/core"
)

// Subject categories
const (
	CategoryRequired = "required"
	CategoryElective = "elective"
)

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	// KKM is the minimum competency threshold; a final score at or above it passes.
	KKM       float64   `json:"kkm"`
	TeacherID string    `json:"teacher_id,omitempty"`
	Semester  string    `json:"semester,omitempty"`
	Credits   int       `json:"credits"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name      string  `json:"name" validate:"required"`
	Code      string  `json:"code" validate:"required,alphanum_"`
	KKM       float64 `json:"kkm" validate:"score"`
	TeacherID string  `json:"teacher_id"`
	Semester  string  `json:"semester"`
	Credits   int     `json:"credits" validate:"gte=0"`
	Category  string  `json:"category" validate:"required,oneof=required elective"`
}

func (ns *NewSubject) Validate(svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Code)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name      string   `json:"name"`
	Code      string   `json:"code" validate:"omitempty,alphanum_"`
	KKM       *float64 `json:"kkm" validate:"omitempty,score"`
	TeacherID string   `json:"teacher_id"`
	Semester  string   `json:"semester"`
	Credits   *int     `json:"credits" validate:"omitempty,gte=0"`
	Category  string   `json:"category" validate:"omitempty,oneof=required elective"`
}

func (us *UpdateSubject) Validate(origSub Subject, svc Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = origSub.Name
	}
	if code := core.CleanString(us.Code, true /* lower */); code != "" {
		us.Code = code
	} else {
		us.Code = origSub.Code
	}
	if us.Category == "" {
		us.Category = origSub.Category
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.Code, origSub)
}
