package student

import (
	"time"

	"sekolahku/core"
)

type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	// NISN is the national student identification number; unique per student.
	NISN             string    `json:"nisn"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	GuardianName     string    `json:"guardian_name,omitempty"`
	Extracurriculars []string  `json:"extracurriculars"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

func (s Student) StudentRef() string { return s.ID }

// AttendanceTally carries per-student attendance counts for the semester,
// not individual attendance events.
type AttendanceTally struct {
	StudentID  string    `json:"student_id"`
	Present    int       `json:"present"`
	Sick       int       `json:"sick"`
	Permission int       `json:"permission"`
	Absent     int       `json:"absent"`
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (t AttendanceTally) StudentRef() string { return t.StudentID }

// Rate is the fraction of tracked days the student was present, 0 when no
// days have been tallied yet.
func (t AttendanceTally) Rate() float64 {
	total := t.Present + t.Sick + t.Permission + t.Absent
	if total == 0 {
		return 0
	}
	return float64(t.Present) / float64(total)
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name             string   `json:"name" validate:"required"`
	ClassName        string   `json:"class_name" validate:"required"`
	NISN             string   `json:"nisn" validate:"required,numeric,min=8"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	GuardianName     string   `json:"guardian_name"`
	Extracurriculars []string `json:"extracurriculars"`
}

func (ns *NewStudent) Validate(svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.NISN = core.CleanString(ns.NISN)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.NISN)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name             string   `json:"name"`
	ClassName        string   `json:"class_name"`
	NISN             string   `json:"nisn" validate:"omitempty,numeric,min=8"`
	Email            string   `json:"email" validate:"omitempty,email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	GuardianName     string   `json:"guardian_name"`
	Extracurriculars []string `json:"extracurriculars"`
}

func (us *UpdateStudent) Validate(origStd Student, svc Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = origStd.Name
	}
	if class := core.CleanString(us.ClassName); class != "" {
		us.ClassName = class
	} else {
		us.ClassName = origStd.ClassName
	}
	if nisn := core.CleanString(us.NISN); nisn != "" {
		us.NISN = nisn
	} else {
		us.NISN = origStd.NISN
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.NISN, origStd)
}

// UpsertAttendance is the write payload for a student's attendance tally.
type UpsertAttendance struct {
	StudentID  string `json:"student_id" validate:"required"`
	Present    int    `json:"present" validate:"gte=0"`
	Sick       int    `json:"sick" validate:"gte=0"`
	Permission int    `json:"permission" validate:"gte=0"`
	Absent     int    `json:"absent" validate:"gte=0"`
}

func (ua UpsertAttendance) Validate() error { return core.Validate.Struct(ua) }

type QueryFilter struct {
	Search    string `query:"search"`
	ClassName string `query:"class_name"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.ClassName == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassName = core.CleanString(qf.ClassName)
}
