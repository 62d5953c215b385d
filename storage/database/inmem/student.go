package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"sekolahku/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

// query returns all students sorted by name. Callers hold the lock.
func (r *studentRepository) query() []student.Student {
	res := make([]student.Student, 0, len(r.db.t))
	for _, std := range r.db.t {
		res = append(res, *std)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func (r *studentRepository) CheckNISNUniqueness(ctx context.Context, nisn string, excludedStudents ...student.Student) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedStudents))
	for _, std := range excludedStudents {
		excluded[std.ID] = struct{}{}
	}
	for _, std := range r.query() {
		if _, skip := excluded[std.ID]; skip {
			continue
		}
		if std.NISN == nisn {
			return student.ErrNISNExists
		}
	}
	return nil
}

func (r *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	std.ID = uuid.New().String()
	r.db.t[std.ID] = &std
	return std, nil
}

func (r *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return r.query(), nil
}

func (r *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if std, ok := r.db.t[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (r *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var res []student.Student
	search := strings.ToLower(filter.Search)
	for _, std := range r.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(std.Name), search) &&
			!strings.Contains(strings.ToLower(std.NISN), search) {
			continue
		}
		if filter.ClassName != "" && std.ClassName != filter.ClassName {
			continue
		}
		res = append(res, std)
	}
	return res, nil
}

func (r *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.t[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	std.CreatedAt = orig.CreatedAt
	r.db.t[std.ID] = &std
	return std, nil
}

func (r *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, id := range ids {
		delete(r.db.t, id)
		delete(r.db.attendance, id)
	}
	return nil
}

func (r *studentRepository) QueryAllAttendance(ctx context.Context) ([]student.AttendanceTally, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]student.AttendanceTally, 0, len(r.db.attendance))
	for _, tally := range r.db.attendance {
		res = append(res, *tally)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StudentID < res[j].StudentID })
	return res, nil
}

func (r *studentRepository) GetAttendance(ctx context.Context, studentID string) (student.AttendanceTally, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if tally, ok := r.db.attendance[studentID]; ok {
		return *tally, nil
	}
	return student.AttendanceTally{}, student.ErrNotFound
}

func (r *studentRepository) UpsertAttendance(ctx context.Context, tally student.AttendanceTally) (student.AttendanceTally, bool, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	_, replaced := r.db.attendance[tally.StudentID]
	r.db.attendance[tally.StudentID] = &tally
	return tally, replaced, nil
}
