package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/subject"
)

type subjectRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Code      string      `db:"code"`
	KKM       float64     `db:"kkm"`
	TeacherID null.String `db:"teacher_id"`
	Semester  string      `db:"semester"`
	Credits   int         `db:"credits"`
	Category  string      `db:"category"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func newSubjectRow(sub subject.Subject) subjectRow {
	return subjectRow{
		ID:        sub.ID,
		Name:      sub.Name,
		Code:      sub.Code,
		KKM:       sub.KKM,
		TeacherID: null.NewString(sub.TeacherID, sub.TeacherID != ""),
		Semester:  sub.Semester,
		Credits:   sub.Credits,
		Category:  sub.Category,
		CreatedAt: null.NewTime(sub.CreatedAt.UTC(), !sub.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(sub.UpdatedAt.UTC(), !sub.UpdatedAt.IsZero()),
	}
}

func (row subjectRow) subject() subject.Subject {
	return subject.Subject{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		KKM:       row.KKM,
		TeacherID: row.TeacherID.String,
		Semester:  row.Semester,
		Credits:   row.Credits,
		Category:  row.Category,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

type subjectRepository struct {
	db core.DBExecutor
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db core.DBExecutor) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedSubjects ...subject.Subject) error {
	query := `SELECT count(*) FROM subject WHERE code = ?`
	args := []interface{}{code}
	if len(excludedSubjects) > 0 {
		ids := make([]string, 0, len(excludedSubjects))
		for _, sub := range excludedSubjects {
			ids = append(ids, sub.ID)
		}
		inQuery, inArgs, err := sqlx.In(`id NOT IN (?)`, ids)
		if err != nil {
			return core.NewStoreError("subject.uniqueness", err)
		}
		query += " AND " + inQuery
		args = append(args, inArgs...)
	}

	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("subject.uniqueness", err)
	}
	if cnt > 0 {
		return subject.ErrCodeExists
	}
	return nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.ID = uuid.New().String()
	row := newSubjectRow(sub)
	query := `
INSERT INTO subject (id, name, code, kkm, teacher_id, semester, credits, category, created_at, updated_at)
VALUES (:id, :name, :code, :kkm, :teacher_id, :semester, :credits, :category, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, row); err != nil {
		return subject.Subject{}, core.NewStoreError("subject.create", err)
	}
	return row.subject(), nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	var rows []subjectRow
	query := `SELECT * FROM subject ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("subject.query", err)
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.subject())
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subject.Subject{}, subject.ErrNotFound
	}
	var row subjectRow
	query := repo.db.Rebind(`SELECT * FROM subject WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, core.NewStoreError("subject.get", err)
	}
	return row.subject(), nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	row := newSubjectRow(sub)
	query := `
UPDATE subject
SET name       = :name,
    code       = :code,
    kkm        = :kkm,
    teacher_id = :teacher_id,
    semester   = :semester,
    credits    = :credits,
    category   = :category,
    updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, query, row)
	if err != nil {
		return subject.Subject{}, core.NewStoreError("subject.update", err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return repo.GetSubjectByID(ctx, sub.ID)
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM subject WHERE id IN (?)`, ids)
	if err != nil {
		return core.NewStoreError("subject.delete", err)
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return core.NewStoreError("subject.delete", err)
	}
	return nil
}
