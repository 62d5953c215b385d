package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/student"
)

type studentRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	ClassName        string         `db:"class_name"`
	NISN             string         `db:"nisn"`
	Email            string         `db:"email"`
	Phone            string         `db:"phone"`
	Address          string         `db:"address"`
	GuardianName     string         `db:"guardian_name"`
	Extracurriculars pq.StringArray `db:"extracurriculars"`
	CreatedAt        null.Time      `db:"created_at"`
	UpdatedAt        null.Time      `db:"updated_at"`
}

func newStudentRow(std student.Student) studentRow {
	return studentRow{
		ID:               std.ID,
		Name:             std.Name,
		ClassName:        std.ClassName,
		NISN:             std.NISN,
		Email:            std.Email,
		Phone:            std.Phone,
		Address:          std.Address,
		GuardianName:     std.GuardianName,
		Extracurriculars: std.Extracurriculars,
		CreatedAt:        null.NewTime(std.CreatedAt.UTC(), !std.CreatedAt.IsZero()),
		UpdatedAt:        null.NewTime(std.UpdatedAt.UTC(), !std.UpdatedAt.IsZero()),
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:               row.ID,
		Name:             row.Name,
		ClassName:        row.ClassName,
		NISN:             row.NISN,
		Email:            row.Email,
		Phone:            row.Phone,
		Address:          row.Address,
		GuardianName:     row.GuardianName,
		Extracurriculars: row.Extracurriculars,
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}

type attendanceRow struct {
	StudentID  string    `db:"student_id"`
	Present    int       `db:"present"`
	Sick       int       `db:"sick"`
	Permission int       `db:"permission"`
	Absent     int       `db:"absent"`
	UpdatedAt  null.Time `db:"updated_at"`
}

func (row attendanceRow) tally() student.AttendanceTally {
	return student.AttendanceTally{
		StudentID:  row.StudentID,
		Present:    row.Present,
		Sick:       row.Sick,
		Permission: row.Permission,
		Absent:     row.Absent,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

type studentRepository struct {
	db core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db core.DBExecutor) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckNISNUniqueness(ctx context.Context, nisn string, excludedStudents ...student.Student) error {
	query := `SELECT count(*) FROM student WHERE nisn = ?`
	args := []interface{}{nisn}
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, std := range excludedStudents {
			ids = append(ids, std.ID)
		}
		inQuery, inArgs, err := sqlx.In(`id NOT IN (?)`, ids)
		if err != nil {
			return core.NewStoreError("student.uniqueness", err)
		}
		query += " AND " + inQuery
		args = append(args, inArgs...)
	}

	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("student.uniqueness", err)
	}
	if cnt > 0 {
		return student.ErrNISNExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	std.ID = uuid.New().String()
	row := newStudentRow(std)
	query := `
INSERT INTO student (id, name, class_name, nisn, email, phone, address, guardian_name, extracurriculars, created_at, updated_at)
VALUES (:id, :name, :class_name, :nisn, :email, :phone, :address, :guardian_name, :extracurriculars, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, row); err != nil {
		return student.Student{}, core.NewStoreError("student.create", err)
	}
	return row.student(), nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	query := `SELECT * FROM student ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("student.query", err)
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	query := repo.db.Rebind(`SELECT * FROM student WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, core.NewStoreError("student.get", err)
	}
	return row.student(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM student WHERE true`
	var args []interface{}

	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		query += ` AND (name ILIKE ? OR nisn ILIKE ?)`
		args = append(args, val, val)
	}
	if filter.ClassName != "" {
		query += ` AND class_name = ?`
		args = append(args, filter.ClassName)
	}
	query += ` ORDER BY name`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, core.NewStoreError("student.filter", err)
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := newStudentRow(std)
	query := `
UPDATE student
SET name             = :name,
    class_name       = :class_name,
    nisn             = :nisn,
    email            = :email,
    phone            = :phone,
    address          = :address,
    guardian_name    = :guardian_name,
    extracurriculars = :extracurriculars,
    updated_at       = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, query, row)
	if err != nil {
		return student.Student{}, core.NewStoreError("student.update", err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, std.ID)
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return core.NewStoreError("student.delete", err)
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("student.delete", err)
	}
	return nil
}

func (repo studentRepository) QueryAllAttendance(ctx context.Context) ([]student.AttendanceTally, error) {
	var rows []attendanceRow
	query := `SELECT * FROM attendance ORDER BY student_id`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("attendance.query", err)
	}
	tallies := make([]student.AttendanceTally, 0, len(rows))
	for _, row := range rows {
		tallies = append(tallies, row.tally())
	}
	return tallies, nil
}

func (repo studentRepository) GetAttendance(ctx context.Context, studentID string) (student.AttendanceTally, error) {
	var row attendanceRow
	query := repo.db.Rebind(`SELECT * FROM attendance WHERE student_id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, studentID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.AttendanceTally{}, student.ErrNotFound
		}
		return student.AttendanceTally{}, core.NewStoreError("attendance.get", err)
	}
	return row.tally(), nil
}

func (repo studentRepository) UpsertAttendance(ctx context.Context, tally student.AttendanceTally) (student.AttendanceTally, bool, error) {
	row := attendanceRow{
		StudentID:  tally.StudentID,
		Present:    tally.Present,
		Sick:       tally.Sick,
		Permission: tally.Permission,
		Absent:     tally.Absent,
		UpdatedAt:  null.TimeFrom(timeOrNow(tally.UpdatedAt)),
	}
	// xmax is non-zero only on the conflict-update path
	query := `
INSERT INTO attendance (student_id, present, sick, permission, absent, updated_at)
VALUES (:student_id, :present, :sick, :permission, :absent, :updated_at)
ON CONFLICT (student_id) DO UPDATE
    SET present    = EXCLUDED.present,
        sick       = EXCLUDED.sick,
        permission = EXCLUDED.permission,
        absent     = EXCLUDED.absent,
        updated_at = EXCLUDED.updated_at
RETURNING (xmax <> 0) AS replaced`
	rows, err := sqlx.NamedQueryContext(ctx, repo.db, query, row)
	if err != nil {
		return student.AttendanceTally{}, false, core.NewStoreError("attendance.upsert", err)
	}
	defer rows.Close()

	var replaced bool
	if rows.Next() {
		if err = rows.Scan(&replaced); err != nil {
			return student.AttendanceTally{}, false, core.NewStoreError("attendance.upsert", err)
		}
	}
	return row.tally(), replaced, nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
