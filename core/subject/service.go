package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"sekolahku/core"
	"sekolahku/core/access"
	"sekolahku/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedSubjects ...Subject) error
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(code string, exclSubjects ...Subject) error
		Create(ctx context.Context, p user.Principal, ns NewSubject) (Subject, error)
		QueryAll(ctx context.Context) ([]Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
		Update(ctx context.Context, p user.Principal, id string, us UpdateSubject) (Subject, error)
		Delete(ctx context.Context, p user.Principal, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(code string, exclSubjects ...Subject) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclSubjects...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, p user.Principal, ns NewSubject) (Subject, error) {
	if !access.CanMutate(p) {
		return Subject{}, core.ErrPermissionDenied
	}
	now := time.Now().UTC()
	sub := Subject{
		Name:      ns.Name,
		Code:      ns.Code,
		KKM:       ns.KKM,
		TeacherID: ns.TeacherID,
		Semester:  ns.Semester,
		Credits:   ns.Credits,
		Category:  ns.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

// QueryAll returns the full subject catalog. Subjects are reference data,
// visible to every role.
func (svc *service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, p user.Principal, id string, us UpdateSubject) (Subject, error) {
	if !access.CanMutate(p) {
		return Subject{}, core.ErrPermissionDenied
	}
	origSub, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}

	sub := Subject{
		ID:        id,
		Name:      us.Name,
		Code:      us.Code,
		KKM:       origSub.KKM,
		TeacherID: us.TeacherID,
		Semester:  us.Semester,
		Credits:   origSub.Credits,
		Category:  us.Category,
		UpdatedAt: time.Now().UTC(),
	}
	if us.KKM != nil {
		sub.KKM = *us.KKM
	}
	if us.Credits != nil {
		sub.Credits = *us.Credits
	}
	if us.TeacherID == "" {
		sub.TeacherID = origSub.TeacherID
	}
	if us.Semester == "" {
		sub.Semester = origSub.Semester
	}
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) Delete(ctx context.Context, p user.Principal, ids ...string) error {
	if !access.CanMutate(p) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}
