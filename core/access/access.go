// Package access scopes record sets to what a Principal is allowed to see,
// and gates what it is allowed to change. Scoping is pure: stable, order
// preserving, and free of any ambient session state.
package access

import (
	"sekolahku/core/user"
)

type (
	// StudentScoped is any record tied to a student (grades, attendance, summaries).
	StudentScoped interface {
		StudentRef() string
	}

	// ParentScoped is any record owned by a parent account (checklist states).
	ParentScoped interface {
		ParentRef() string
	}
)

// CanMutate reports whether the principal may create, update or delete
// register records (students, subjects, grades, attendance). It does not by
// itself narrow read visibility.
func CanMutate(p user.Principal) bool {
	return p.Role == user.RoleTeacher || p.Role == user.RoleAdmin
}

// ScopeByStudent narrows records to those visible to the principal:
// teacher/admin see everything unchanged, student/parent only the records of
// their linked student. Any other role sees nothing.
func ScopeByStudent[R StudentScoped](p user.Principal, records []R) []R {
	switch p.Role {
	case user.RoleTeacher, user.RoleAdmin:
		return records
	case user.RoleStudent, user.RoleParent:
		if p.LinkedStudentID == "" {
			return []R{}
		}
		scoped := make([]R, 0, len(records))
		for _, rec := range records {
			if rec.StudentRef() == p.LinkedStudentID {
				scoped = append(scoped, rec)
			}
		}
		return scoped
	}
	return []R{}
}

// ScopeByParent narrows parent-owned records: admin sees all parents' records,
// a parent only their own, everyone else nothing.
func ScopeByParent[R ParentScoped](p user.Principal, records []R) []R {
	switch p.Role {
	case user.RoleAdmin:
		return records
	case user.RoleParent:
		scoped := make([]R, 0, len(records))
		for _, rec := range records {
			if rec.ParentRef() == p.ID {
				scoped = append(scoped, rec)
			}
		}
		return scoped
	}
	return []R{}
}
