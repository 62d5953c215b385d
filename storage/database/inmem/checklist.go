package inmemdb

import (
	"context"
	"sort"
	"time"

	"sekolahku/core/checklist"
	"sekolahku/core/user"
)

type checklistRepository struct {
	db    *checklistTable
	users *userTable
}

var _ checklist.Repository = (*checklistRepository)(nil) // interface compliance check

func NewChecklistRepository(db *DB) *checklistRepository {
	return &checklistRepository{db: db.checklist, users: db.user}
}

func (r *checklistRepository) QueryCatalog(ctx context.Context) ([]checklist.Item, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]checklist.Item, 0, len(r.db.items))
	for _, item := range r.db.items {
		res = append(res, *item)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Position < res[j].Position })
	return res, nil
}

func (r *checklistRepository) GetState(ctx context.Context, parentID string) (checklist.State, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	checks, ok := r.db.checks[parentID]
	if !ok || len(checks) == 0 {
		return checklist.State{}, checklist.ErrStateNotFound
	}
	return r.buildState(parentID, checks), nil
}

func (r *checklistRepository) QueryAllStates(ctx context.Context) ([]checklist.State, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	// every parent account counts toward the recap, checked or not
	r.users.mutex.RLock()
	parents := make([]user.User, 0)
	for _, usr := range r.users.t {
		if usr.Role == user.RoleParent {
			parents = append(parents, *usr)
		}
	}
	r.users.mutex.RUnlock()
	sort.Slice(parents, func(i, j int) bool { return parents[i].Name < parents[j].Name })

	states := make([]checklist.State, 0, len(parents))
	for _, par := range parents {
		states = append(states, r.buildState(par.ID, r.db.checks[par.ID]))
	}
	return states, nil
}

func (r *checklistRepository) SetItemChecked(ctx context.Context, parentID, itemID string, checked bool, at time.Time) (checklist.State, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	checks, ok := r.db.checks[parentID]
	if !ok {
		checks = make(map[string]time.Time)
		r.db.checks[parentID] = checks
	}
	if checked {
		checks[itemID] = at
	} else {
		delete(checks, itemID)
	}

	state := r.buildState(parentID, checks)
	if state.LastUpdatedAt.Before(at) {
		state.LastUpdatedAt = at
	}
	return state, nil
}

// buildState assembles a parent's state. Callers hold the checklist lock.
func (r *checklistRepository) buildState(parentID string, checks map[string]time.Time) checklist.State {
	state := checklist.State{ParentID: parentID}

	r.users.mutex.RLock()
	if usr, ok := r.users.t[parentID]; ok {
		state.ParentName = usr.Name
		state.StudentID = usr.LinkedStudentID.String
	}
	r.users.mutex.RUnlock()

	ids := make([]string, 0, len(checks))
	for id, at := range checks {
		ids = append(ids, id)
		if at.After(state.LastUpdatedAt) {
			state.LastUpdatedAt = at
		}
	}
	sort.Strings(ids)
	state.CheckedItemIDs = ids
	return state
}
