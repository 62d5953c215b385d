package student

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
	ErrNotFound   = errors.New("student not found")
	ErrNISNExists = errors.New("a student with this NISN already exists")
)

type (
	Repository interface {
		CheckNISNUniqueness(ctx context.Context, nisn string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Student.Name or Student.NISN.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error

		QueryAllAttendance(ctx context.Context) ([]AttendanceTally, error)
		GetAttendance(ctx context.Context, studentID string) (AttendanceTally, error)
		// UpsertAttendance inserts or replaces the tally keyed on student id.
		// Concurrent writers race at the store level; last write wins. The
		// bool reports whether an existing tally was replaced.
		UpsertAttendance(ctx context.Context, tally AttendanceTally) (AttendanceTally, bool, error)
	}

	Service interface {
		CheckUniqueness(nisn string, exclStudents ...Student) error
		Create(ctx context.Context, p user.Principal, ns NewStudent) (Student, error)
		Query(ctx context.Context, p user.Principal, filter QueryFilter) ([]Student, error)
		GetByID(ctx context.Context, p user.Principal, id string) (Student, error)
		Update(ctx context.Context, p user.Principal, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, p user.Principal, ids ...string) error
		QueryAttendance(ctx context.Context, p user.Principal) ([]AttendanceTally, error)
		SaveAttendance(ctx context.Context, p user.Principal, ua UpsertAttendance) (AttendanceTally, bool, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(nisn string, exclStudents ...Student) error {
	if err := svc.repo.CheckNISNUniqueness(context.Background(), nisn, exclStudents...); err != nil {
		if errors.Cause(err) == ErrNISNExists {
			return core.NewValidationError(err, core.FieldError{Field: "nisn", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, p user.Principal, ns NewStudent) (Student, error) {
	if !access.CanMutate(p) {
		return Student{}, core.ErrPermissionDenied
	}
	now := time.Now().UTC()
	std := Student{
		Name:             ns.Name,
		ClassName:        ns.ClassName,
		NISN:             ns.NISN,
		Email:            ns.Email,
		Phone:            ns.Phone,
		Address:          ns.Address,
		GuardianName:     ns.GuardianName,
		Extracurriculars: ns.Extracurriculars,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) Query(ctx context.Context, p user.Principal, filter QueryFilter) ([]Student, error) {
	var students []Student
	var err error
	if filter.IsEmpty() {
		students, err = svc.repo.QueryAllStudents(ctx)
	} else {
		students, err = svc.repo.FilterStudents(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	return access.ScopeByStudent(p, students), nil
}

func (svc *service) GetByID(ctx context.Context, p user.Principal, id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if scoped := access.ScopeByStudent(p, []Student{std}); len(scoped) == 0 {
		return Student{}, ErrNotFound
	}
	return std, nil
}

func (svc *service) Update(ctx context.Context, p user.Principal, id string, us UpdateStudent) (Student, error) {
	if !access.CanMutate(p) {
		return Student{}, core.ErrPermissionDenied
	}
	std := Student{
		ID:               id,
		Name:             us.Name,
		ClassName:        us.ClassName,
		NISN:             us.NISN,
		Email:            us.Email,
		Phone:            us.Phone,
		Address:          us.Address,
		GuardianName:     us.GuardianName,
		Extracurriculars: us.Extracurriculars,
		UpdatedAt:        time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ctx context.Context, p user.Principal, ids ...string) error {
	if !access.CanMutate(p) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *service) QueryAttendance(ctx context.Context, p user.Principal) ([]AttendanceTally, error) {
	tallies, err := svc.repo.QueryAllAttendance(ctx)
	if err != nil {
		return nil, err
	}
	return access.ScopeByStudent(p, tallies), nil
}

// SaveAttendance validates and upserts a student's attendance tally, returning
// the canonical post-write row and whether an existing tally was replaced.
func (svc *service) SaveAttendance(ctx context.Context, p user.Principal, ua UpsertAttendance) (AttendanceTally, bool, error) {
	if !access.CanMutate(p) {
		return AttendanceTally{}, false, core.ErrPermissionDenied
	}
	if err := ua.Validate(); err != nil {
		return AttendanceTally{}, false, err
	}
	if _, err := svc.repo.GetStudentByID(ctx, ua.StudentID); err != nil {
		return AttendanceTally{}, false, err
	}
	return svc.repo.UpsertAttendance(ctx, AttendanceTally{
		StudentID:  ua.StudentID,
		Present:    ua.Present,
		Sick:       ua.Sick,
		Permission: ua.Permission,
		Absent:     ua.Absent,
		UpdatedAt:  time.Now().UTC(),
	})
}
