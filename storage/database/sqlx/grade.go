package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/grade"
)

type midFinalRow struct {
	ID        string       `db:"id"`
	StudentID string       `db:"student_id"`
	SubjectID string       `db:"subject_id"`
	UTS       null.Float64 `db:"uts"`
	UAS       null.Float64 `db:"uas"`
	CreatedAt null.Time    `db:"created_at"`
	UpdatedAt null.Time    `db:"updated_at"`
}

func (row midFinalRow) midFinal() grade.MidFinal {
	return grade.MidFinal{
		ID:        row.ID,
		StudentID: row.StudentID,
		SubjectID: row.SubjectID,
		UTS:       row.UTS,
		UAS:       row.UAS,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

type dailyRow struct {
	ID           string       `db:"id"`
	StudentID    string       `db:"student_id"`
	SubjectID    string       `db:"subject_id"`
	CategoryName string       `db:"category_name"`
	Score        null.Float64 `db:"score"`
	CreatedAt    null.Time    `db:"created_at"`
	UpdatedAt    null.Time    `db:"updated_at"`
}

func (row dailyRow) daily() grade.Daily {
	return grade.Daily{
		ID:           row.ID,
		StudentID:    row.StudentID,
		SubjectID:    row.SubjectID,
		CategoryName: row.CategoryName,
		Score:        row.Score,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

type categoryRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Active   bool   `db:"active"`
	Position int    `db:"position"`
}

func (row categoryRow) category() grade.Category {
	return grade.Category{
		ID:       row.ID,
		Name:     row.Name,
		Active:   row.Active,
		Position: row.Position,
	}
}

type gradeRepository struct {
	db core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db core.DBExecutor) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) GetMidFinal(ctx context.Context, studentID, subjectID string) (grade.MidFinal, error) {
	var row midFinalRow
	query := repo.db.Rebind(`SELECT * FROM grade_midfinal WHERE student_id = ? AND subject_id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, studentID, subjectID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return grade.MidFinal{}, grade.ErrNotFound
		}
		return grade.MidFinal{}, core.NewStoreError("grade.midfinal.get", err)
	}
	return row.midFinal(), nil
}

func (repo gradeRepository) QueryAllMidFinals(ctx context.Context) ([]grade.MidFinal, error) {
	var rows []midFinalRow
	query := `SELECT * FROM grade_midfinal ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("grade.midfinal.query", err)
	}
	grades := make([]grade.MidFinal, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.midFinal())
	}
	return grades, nil
}

func (repo gradeRepository) UpsertMidFinal(ctx context.Context, g grade.MidFinal) (grade.MidFinal, bool, error) {
	row := midFinalRow{
		ID:        uuid.New().String(),
		StudentID: g.StudentID,
		SubjectID: g.SubjectID,
		UTS:       g.UTS,
		UAS:       g.UAS,
		CreatedAt: null.TimeFrom(timeOrNow(g.CreatedAt)),
		UpdatedAt: null.TimeFrom(timeOrNow(g.UpdatedAt)),
	}
	query := `
INSERT INTO grade_midfinal (id, student_id, subject_id, uts, uas, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :uts, :uas, :created_at, :updated_at)
ON CONFLICT (student_id, subject_id) DO UPDATE
    SET uts        = EXCLUDED.uts,
        uas        = EXCLUDED.uas,
        updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, row); err != nil {
		return grade.MidFinal{}, false, core.NewStoreError("grade.midfinal.upsert", err)
	}
	saved, err := repo.GetMidFinal(ctx, g.StudentID, g.SubjectID)
	if err != nil {
		return grade.MidFinal{}, false, err
	}
	// on conflict the original row (and its id) survives
	return saved, saved.ID != row.ID, nil
}

func (repo gradeRepository) QueryAllDailies(ctx context.Context) ([]grade.Daily, error) {
	var rows []dailyRow
	query := `SELECT * FROM grade_daily ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("grade.daily.query", err)
	}
	grades := make([]grade.Daily, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.daily())
	}
	return grades, nil
}

func (repo gradeRepository) UpsertDaily(ctx context.Context, d grade.Daily) (grade.Daily, bool, error) {
	row := dailyRow{
		ID:           uuid.New().String(),
		StudentID:    d.StudentID,
		SubjectID:    d.SubjectID,
		CategoryName: d.CategoryName,
		Score:        d.Score,
		CreatedAt:    null.TimeFrom(timeOrNow(d.CreatedAt)),
		UpdatedAt:    null.TimeFrom(timeOrNow(d.UpdatedAt)),
	}
	query := `
INSERT INTO grade_daily (id, student_id, subject_id, category_name, score, created_at, updated_at)
VALUES (:id, :student_id, :subject_id, :category_name, :score, :created_at, :updated_at)
ON CONFLICT (student_id, subject_id, category_name) DO UPDATE
    SET score      = EXCLUDED.score,
        updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, row); err != nil {
		return grade.Daily{}, false, core.NewStoreError("grade.daily.upsert", err)
	}

	var saved dailyRow
	get := repo.db.Rebind(`SELECT * FROM grade_daily WHERE student_id = ? AND subject_id = ? AND category_name = ?`)
	if err := repo.db.GetContext(ctx, &saved, get, d.StudentID, d.SubjectID, d.CategoryName); err != nil {
		return grade.Daily{}, false, core.NewStoreError("grade.daily.upsert", err)
	}
	return saved.daily(), saved.ID != row.ID, nil
}

func (repo gradeRepository) QueryCategories(ctx context.Context) ([]grade.Category, error) {
	var rows []categoryRow
	query := `SELECT * FROM grade_category ORDER BY position`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("grade.category.query", err)
	}
	categories := make([]grade.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.category())
	}
	return categories, nil
}

func (repo gradeRepository) SetCategoryActive(ctx context.Context, id string, active bool) (grade.Category, error) {
	query := repo.db.Rebind(`UPDATE grade_category SET active = ? WHERE id = ?`)
	res, err := repo.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return grade.Category{}, core.NewStoreError("grade.category.toggle", err)
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return grade.Category{}, grade.ErrCategoryNotFound
	}

	var row categoryRow
	get := repo.db.Rebind(`SELECT * FROM grade_category WHERE id = ?`)
	if err = repo.db.GetContext(ctx, &row, get, id); err != nil {
		return grade.Category{}, core.NewStoreError("grade.category.toggle", err)
	}
	return row.category(), nil
}
