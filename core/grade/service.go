package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"sekolahku/core"
	"sekolahku/core/access"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("grade not found")
	ErrCategoryNotFound = errors.New("grade category not found")
)

type (
	// Repository stores raw grade rows. Upserts are keyed on the natural unique
	// tuple and must be atomic at the store level (unique constraint + upsert
	// primitive, or a locked table for the in-memory variant); concurrent
	// writers for the same key race with last-write-wins semantics. The
	// returned bool reports whether an existing row was replaced, so callers
	// can tell a recovered duplicate from a fresh insert.
	Repository interface {
		GetMidFinal(ctx context.Context, studentID, subjectID string) (MidFinal, error)
		QueryAllMidFinals(ctx context.Context) ([]MidFinal, error)
		UpsertMidFinal(ctx context.Context, g MidFinal) (MidFinal, bool, error)

		QueryAllDailies(ctx context.Context) ([]Daily, error)
		UpsertDaily(ctx context.Context, d Daily) (Daily, bool, error)

		QueryCategories(ctx context.Context) ([]Category, error)
		SetCategoryActive(ctx context.Context, id string, active bool) (Category, error)
	}

	Service interface {
		QueryMidFinals(ctx context.Context, p user.Principal) ([]MidFinal, error)
		QueryDailies(ctx context.Context, p user.Principal) ([]Daily, error)
		SaveMidFinal(ctx context.Context, p user.Principal, ug UpsertMidFinalGrade) (MidFinal, bool, error)
		SaveDaily(ctx context.Context, p user.Principal, ug UpsertDailyGrade) (Daily, bool, error)
		Categories(ctx context.Context) ([]Category, error)
		ToggleCategory(ctx context.Context, p user.Principal, id string, active bool) (Category, error)
		Summaries(ctx context.Context, p user.Principal) ([]StudentSubjectSummary, error)
		Reports(ctx context.Context, p user.Principal) ([]StudentReport, error)
	}

	service struct {
		repo     Repository
		students student.Repository
		subjects subject.Repository
		policy   ScorePolicy
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students student.Repository, subjects subject.Repository, policy ScorePolicy) Service {
	return &service{
		repo:     repo,
		students: students,
		subjects: subjects,
		policy:   policy,
	}
}

func (svc *service) QueryMidFinals(ctx context.Context, p user.Principal) ([]MidFinal, error) {
	grades, err := svc.repo.QueryAllMidFinals(ctx)
	if err != nil {
		return nil, err
	}
	return access.ScopeByStudent(p, grades), nil
}

func (svc *service) QueryDailies(ctx context.Context, p user.Principal) ([]Daily, error) {
	dailies, err := svc.repo.QueryAllDailies(ctx)
	if err != nil {
		return nil, err
	}
	return access.ScopeByStudent(p, dailies), nil
}

// checkRefs ensures the referenced student and subject exist before a write.
func (svc *service) checkRefs(ctx context.Context, studentID, subjectID string) error {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return errors.Wrap(err, "checking student reference")
	}
	if _, err := svc.subjects.GetSubjectByID(ctx, subjectID); err != nil {
		return errors.Wrap(err, "checking subject reference")
	}
	return nil
}

// SaveMidFinal inserts or replaces the single UTS/UAS row for
// (student, subject) and returns the canonical post-write row, so callers can
// refresh derived views without a second read. The bool reports whether an
// existing row was replaced.
func (svc *service) SaveMidFinal(ctx context.Context, p user.Principal, ug UpsertMidFinalGrade) (MidFinal, bool, error) {
	if !access.CanMutate(p) {
		return MidFinal{}, false, core.ErrPermissionDenied
	}
	if err := ug.Validate(); err != nil {
		return MidFinal{}, false, err
	}
	if err := svc.checkRefs(ctx, ug.StudentID, ug.SubjectID); err != nil {
		return MidFinal{}, false, err
	}
	return svc.repo.UpsertMidFinal(ctx, MidFinal{
		StudentID: ug.StudentID,
		SubjectID: ug.SubjectID,
		UTS:       ug.UTS,
		UAS:       ug.UAS,
		UpdatedAt: time.Now().UTC(),
	})
}

// SaveDaily is SaveMidFinal's counterpart for (student, subject, category) rows.
// The category must exist in the catalog but need not be active: scores may be
// corrected after a category is retired.
func (svc *service) SaveDaily(ctx context.Context, p user.Principal, ug UpsertDailyGrade) (Daily, bool, error) {
	if !access.CanMutate(p) {
		return Daily{}, false, core.ErrPermissionDenied
	}
	if err := ug.Validate(); err != nil {
		return Daily{}, false, err
	}
	if err := svc.checkRefs(ctx, ug.StudentID, ug.SubjectID); err != nil {
		return Daily{}, false, err
	}
	cats, err := svc.repo.QueryCategories(ctx)
	if err != nil {
		return Daily{}, false, err
	}
	known := false
	for _, cat := range cats {
		if cat.Name == ug.CategoryName {
			known = true
			break
		}
	}
	if !known {
		return Daily{}, false, core.NewValidationError(
			ErrCategoryNotFound, core.FieldError{Field: "category_name", Error: ErrCategoryNotFound.Error()})
	}
	return svc.repo.UpsertDaily(ctx, Daily{
		StudentID:    ug.StudentID,
		SubjectID:    ug.SubjectID,
		CategoryName: ug.CategoryName,
		Score:        ug.Score,
		UpdatedAt:    time.Now().UTC(),
	})
}

func (svc *service) Categories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *service) ToggleCategory(ctx context.Context, p user.Principal, id string, active bool) (Category, error) {
	if !access.CanMutate(p) {
		return Category{}, core.ErrPermissionDenied
	}
	return svc.repo.SetCategoryActive(ctx, id, active)
}

// Summaries recomputes the aggregated per-student-per-subject view from the
// raw rows on every call and narrows it to the principal's visibility.
func (svc *service) Summaries(ctx context.Context, p user.Principal) ([]StudentSubjectSummary, error) {
	students, err := svc.students.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := svc.subjects.QueryAllSubjects(ctx)
	if err != nil {
		return nil, err
	}
	midFinals, err := svc.repo.QueryAllMidFinals(ctx)
	if err != nil {
		return nil, err
	}
	dailies, err := svc.repo.QueryAllDailies(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := svc.repo.QueryCategories(ctx)
	if err != nil {
		return nil, err
	}

	summaries := Aggregate(students, subjects, midFinals, dailies, categories, svc.policy)
	return access.ScopeByStudent(p, summaries), nil
}

func (svc *service) Reports(ctx context.Context, p user.Principal) ([]StudentReport, error) {
	summaries, err := svc.Summaries(ctx, p)
	if err != nil {
		return nil, err
	}
	return Report(summaries), nil
}
