package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"sekolahku/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db.grade}
}

func midFinalKey(studentID, subjectID string) string {
	return studentID + "/" + subjectID
}

func dailyKey(studentID, subjectID, category string) string {
	return studentID + "/" + subjectID + "/" + category
}

func (r *gradeRepository) GetMidFinal(ctx context.Context, studentID, subjectID string) (grade.MidFinal, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if g, ok := r.db.midFinals[midFinalKey(studentID, subjectID)]; ok {
		return *g, nil
	}
	return grade.MidFinal{}, grade.ErrNotFound
}

func (r *gradeRepository) QueryAllMidFinals(ctx context.Context) ([]grade.MidFinal, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]grade.MidFinal, 0, len(r.db.midFinals))
	for _, g := range r.db.midFinals {
		res = append(res, *g)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (r *gradeRepository) UpsertMidFinal(ctx context.Context, g grade.MidFinal) (grade.MidFinal, bool, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	now := time.Now().UTC()
	key := midFinalKey(g.StudentID, g.SubjectID)
	orig, replaced := r.db.midFinals[key]
	if replaced {
		g.ID = orig.ID
		g.CreatedAt = orig.CreatedAt
	} else {
		g.ID = uuid.New().String()
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	r.db.midFinals[key] = &g
	return g, replaced, nil
}

func (r *gradeRepository) QueryAllDailies(ctx context.Context) ([]grade.Daily, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]grade.Daily, 0, len(r.db.dailies))
	for _, d := range r.db.dailies {
		res = append(res, *d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (r *gradeRepository) UpsertDaily(ctx context.Context, d grade.Daily) (grade.Daily, bool, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	now := time.Now().UTC()
	key := dailyKey(d.StudentID, d.SubjectID, d.CategoryName)
	orig, replaced := r.db.dailies[key]
	if replaced {
		d.ID = orig.ID
		d.CreatedAt = orig.CreatedAt
	} else {
		d.ID = uuid.New().String()
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	r.db.dailies[key] = &d
	return d, replaced, nil
}

func (r *gradeRepository) QueryCategories(ctx context.Context) ([]grade.Category, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]grade.Category, 0, len(r.db.categories))
	for _, cat := range r.db.categories {
		res = append(res, *cat)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Position < res[j].Position })
	return res, nil
}

func (r *gradeRepository) SetCategoryActive(ctx context.Context, id string, active bool) (grade.Category, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if cat, ok := r.db.categories[id]; ok {
		cat.Active = active
		return *cat, nil
	}
	return grade.Category{}, grade.ErrCategoryNotFound
}
