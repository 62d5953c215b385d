package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, role string,
	linkedStudentID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:            name,
		Username:        uname,
		Email:           email,
		Role:            role,
		LinkedStudentID: null.NewString(linkedStudentID, linkedStudentID != ""),
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name, className, nisn string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	std, err := repo.CreateStudent(context.Background(), student.Student{
		Name:      name,
		ClassName: className,
		NISN:      nisn,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return std
}

func CreateSubject(t *testing.T, repo subject.Repository, name, code string, kkm float64) subject.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), subject.Subject{
		Name:      name,
		Code:      code,
		KKM:       kkm,
		Category:  subject.CategoryRequired,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	return sub
}

// NopLogger discards everything; for wiring components under test.
type NopLogger struct{}

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
