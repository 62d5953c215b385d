package sqlxrepos

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"sekolahku/core"
	"sekolahku/core/checklist"
)

type checklistItemRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Required    bool      `db:"required"`
	Deadline    null.Time `db:"deadline"`
	Position    int       `db:"position"`
}

func (row checklistItemRow) item() checklist.Item {
	return checklist.Item{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Required:    row.Required,
		Deadline:    row.Deadline,
		Position:    row.Position,
	}
}

type checklistCheckRow struct {
	ParentID  string    `db:"parent_id"`
	ItemID    string    `db:"item_id"`
	CheckedAt time.Time `db:"checked_at"`
}

type checklistParentRow struct {
	ID              string      `db:"id"`
	Name            null.String `db:"name"`
	LinkedStudentID null.String `db:"linked_student_id"`
}

type checklistRepository struct {
	db core.DBExecutor
}

var _ checklist.Repository = (*checklistRepository)(nil) // interface compliance check

func NewChecklistRepository(db core.DBExecutor) *checklistRepository {
	return &checklistRepository{db: db}
}

func (repo checklistRepository) QueryCatalog(ctx context.Context) ([]checklist.Item, error) {
	var rows []checklistItemRow
	query := `SELECT * FROM checklist_item ORDER BY position`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, core.NewStoreError("checklist.catalog", err)
	}
	items := make([]checklist.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, nil
}

func (repo checklistRepository) GetState(ctx context.Context, parentID string) (checklist.State, error) {
	var checks []checklistCheckRow
	query := repo.db.Rebind(`SELECT * FROM checklist_check WHERE parent_id = ? ORDER BY checked_at`)
	if err := repo.db.SelectContext(ctx, &checks, query, parentID); err != nil {
		return checklist.State{}, core.NewStoreError("checklist.state", err)
	}
	if len(checks) == 0 {
		return checklist.State{}, checklist.ErrStateNotFound
	}
	return repo.buildState(ctx, parentID, checks)
}

func (repo checklistRepository) QueryAllStates(ctx context.Context) ([]checklist.State, error) {
	// every parent account counts toward the recap, checked or not
	var parents []checklistParentRow
	parentsQuery := `SELECT id, name, linked_student_id FROM "user" WHERE role = 'parent' ORDER BY name`
	if err := repo.db.SelectContext(ctx, &parents, parentsQuery); err != nil {
		return nil, core.NewStoreError("checklist.states", err)
	}

	var checks []checklistCheckRow
	checksQuery := `SELECT * FROM checklist_check ORDER BY checked_at`
	if err := repo.db.SelectContext(ctx, &checks, checksQuery); err != nil {
		return nil, core.NewStoreError("checklist.states", err)
	}

	byParent := make(map[string][]checklistCheckRow, len(parents))
	for _, chk := range checks {
		byParent[chk.ParentID] = append(byParent[chk.ParentID], chk)
	}

	states := make([]checklist.State, 0, len(parents))
	for _, par := range parents {
		state := checklist.State{
			ParentID:   par.ID,
			ParentName: par.Name.String,
			StudentID:  par.LinkedStudentID.String,
		}
		for _, chk := range byParent[par.ID] {
			state.CheckedItemIDs = append(state.CheckedItemIDs, chk.ItemID)
			if chk.CheckedAt.After(state.LastUpdatedAt) {
				state.LastUpdatedAt = chk.CheckedAt
			}
		}
		states = append(states, state)
	}
	return states, nil
}

func (repo checklistRepository) SetItemChecked(ctx context.Context, parentID, itemID string, checked bool, at time.Time) (checklist.State, error) {
	if checked {
		query := repo.db.Rebind(`
INSERT INTO checklist_check (parent_id, item_id, checked_at)
VALUES (?, ?, ?)
ON CONFLICT (parent_id, item_id) DO UPDATE SET checked_at = EXCLUDED.checked_at`)
		if _, err := repo.db.ExecContext(ctx, query, parentID, itemID, at.UTC()); err != nil {
			return checklist.State{}, core.NewStoreError("checklist.check", err)
		}
	} else {
		query := repo.db.Rebind(`DELETE FROM checklist_check WHERE parent_id = ? AND item_id = ?`)
		if _, err := repo.db.ExecContext(ctx, query, parentID, itemID); err != nil {
			return checklist.State{}, core.NewStoreError("checklist.check", err)
		}
	}

	var checks []checklistCheckRow
	query := repo.db.Rebind(`SELECT * FROM checklist_check WHERE parent_id = ? ORDER BY checked_at`)
	if err := repo.db.SelectContext(ctx, &checks, query, parentID); err != nil {
		return checklist.State{}, core.NewStoreError("checklist.check", err)
	}
	state, err := repo.buildState(ctx, parentID, checks)
	if err != nil {
		return checklist.State{}, err
	}
	// an uncheck leaves the tally touched even when nothing else remains
	if state.LastUpdatedAt.Before(at) {
		state.LastUpdatedAt = at.UTC()
	}
	return state, nil
}

func (repo checklistRepository) buildState(ctx context.Context, parentID string, checks []checklistCheckRow) (checklist.State, error) {
	state := checklist.State{ParentID: parentID}
	for _, chk := range checks {
		state.CheckedItemIDs = append(state.CheckedItemIDs, chk.ItemID)
		if chk.CheckedAt.After(state.LastUpdatedAt) {
			state.LastUpdatedAt = chk.CheckedAt
		}
	}

	var par checklistParentRow
	query := repo.db.Rebind(`SELECT id, name, linked_student_id FROM "user" WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &par, query, parentID); err == nil {
		state.ParentName = par.Name.String
		state.StudentID = par.LinkedStudentID.String
	}
	return state, nil
}
