package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"sekolahku/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db.subject}
}

// query returns all subjects sorted by name. Callers hold the lock.
func (r *subjectRepository) query() []subject.Subject {
	res := make([]subject.Subject, 0, len(r.db.t))
	for _, sub := range r.db.t {
		res = append(res, *sub)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

func (r *subjectRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedSubjects ...subject.Subject) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedSubjects))
	for _, sub := range excludedSubjects {
		excluded[sub.ID] = struct{}{}
	}
	for _, sub := range r.query() {
		if _, skip := excluded[sub.ID]; skip {
			continue
		}
		if sub.Code == code {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (r *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	sub.ID = uuid.New().String()
	r.db.t[sub.ID] = &sub
	return sub, nil
}

func (r *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return r.query(), nil
}

func (r *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if sub, ok := r.db.t[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (r *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.t[sub.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	sub.CreatedAt = orig.CreatedAt
	r.db.t[sub.ID] = &sub
	return sub, nil
}

func (r *subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, id := range ids {
		delete(r.db.t, id)
	}
	return nil
}
