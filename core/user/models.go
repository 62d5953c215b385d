package user

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"sekolahku/core"
)

// Roles. The set is closed: every account carries exactly one of these.
const (
	RoleStudent = "student"
	RoleParent  = "parent"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleParent, RoleTeacher, RoleAdmin}

func ValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	// LinkedStudentID ties a student or parent account to the Student register row
	// its visibility is scoped to. Unset for teacher/admin accounts.
	LinkedStudentID null.String `json:"linked_student_id,omitempty"`
	IsActive        *bool       `json:"is_active"`
	PasswordHash    []byte      `json:"-"`
	CreatedAt       time.Time   `json:"created_at"` // UTC
	UpdatedAt       time.Time   `json:"updated_at"` // UTC
	LastLogin       time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsParent() bool  { return u.Role == RoleParent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Principal is the resolved identity of an authenticated account.
// It is immutable for the session and threaded explicitly through every core call;
// the core keeps no ambient "current user" state.
type Principal struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Role            string `json:"role"`
	DisplayName     string `json:"display_name"`
	LinkedStudentID string `json:"linked_student_id,omitempty"`
}

func (u User) Principal() Principal {
	return Principal{
		ID:              u.ID,
		Username:        u.Username,
		Role:            u.Role,
		DisplayName:     u.Name,
		LinkedStudentID: u.LinkedStudentID.String,
	}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string      `json:"name" validate:"required"`
	Username        string      `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Role            string      `json:"role" validate:"required,oneof=student parent teacher admin"`
	LinkedStudentID null.String `json:"linked_student_id"`
	Password        string      `json:"password" validate:"required"`
	PasswordConfirm string      `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string      `json:"name"`
	Username        string      `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Role            string      `json:"role" validate:"omitempty,oneof=student parent teacher admin"`
	LinkedStudentID null.String `json:"linked_student_id"`
	IsActive        *bool       `json:"is_active"`
	Password        string      `json:"password" validate:"omitempty"`
	PasswordConfirm string      `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, svc Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Role == "" {
		uu.Role = origUsr.Role
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Username, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`

	Orderings []core.DBOrdering `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
