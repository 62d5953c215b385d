package checklist

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"sekolahku/core"
	"sekolahku/core/user"
)

var (
	// errors
	ErrStateNotFound = errors.New("checklist state not found")
	ErrUnknownItem   = errors.New("unknown checklist item")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		QueryCatalog(ctx context.Context) ([]Item, error)
		GetState(ctx context.Context, parentID string) (State, error)
		QueryAllStates(ctx context.Context) ([]State, error)
		// SetItemChecked flips one (parent, item) check-in; keyed upserts make a
		// concurrent duplicate submission collapse into a single row.
		SetItemChecked(ctx context.Context, parentID, itemID string, checked bool, at time.Time) (State, error)
	}

	Service interface {
		Catalog(ctx context.Context) ([]Item, error)
		// Summary returns the acting parent's own completion view.
		Summary(ctx context.Context, p user.Principal) (Summary, error)
		// Check mutates the acting parent's own state and returns the refreshed view.
		Check(ctx context.Context, p user.Principal, sc SetChecked) (Summary, error)
		// Recap returns the all-parents roll-up; admin only.
		Recap(ctx context.Context, p user.Principal) (Recap, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Catalog(ctx context.Context) ([]Item, error) {
	return svc.repo.QueryCatalog(ctx)
}

func (svc *service) Summary(ctx context.Context, p user.Principal) (Summary, error) {
	if p.Role != user.RoleParent {
		return Summary{}, core.ErrPermissionDenied
	}
	catalog, err := svc.repo.QueryCatalog(ctx)
	if err != nil {
		return Summary{}, err
	}
	state, err := svc.getOrEmptyState(ctx, p)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(state, catalog, NowFunc()), nil
}

func (svc *service) Check(ctx context.Context, p user.Principal, sc SetChecked) (Summary, error) {
	if p.Role != user.RoleParent {
		return Summary{}, core.ErrPermissionDenied
	}
	if err := sc.Validate(); err != nil {
		return Summary{}, err
	}

	catalog, err := svc.repo.QueryCatalog(ctx)
	if err != nil {
		return Summary{}, err
	}
	known := false
	for _, it := range catalog {
		if it.ID == sc.ItemID {
			known = true
			break
		}
	}
	if !known {
		return Summary{}, core.NewValidationError(
			ErrUnknownItem, core.FieldError{Field: "item_id", Error: ErrUnknownItem.Error()})
	}

	state, err := svc.repo.SetItemChecked(ctx, p.ID, sc.ItemID, sc.Checked, NowFunc().UTC())
	if err != nil {
		return Summary{}, err
	}
	state.ParentName = p.DisplayName
	state.StudentID = p.LinkedStudentID
	return Summarize(state, catalog, NowFunc()), nil
}

func (svc *service) Recap(ctx context.Context, p user.Principal) (Recap, error) {
	if p.Role != user.RoleAdmin {
		return Recap{}, core.ErrPermissionDenied
	}
	catalog, err := svc.repo.QueryCatalog(ctx)
	if err != nil {
		return Recap{}, err
	}
	states, err := svc.repo.QueryAllStates(ctx)
	if err != nil {
		return Recap{}, err
	}
	return SummarizeAll(states, catalog, NowFunc()), nil
}

func (svc *service) getOrEmptyState(ctx context.Context, p user.Principal) (State, error) {
	state, err := svc.repo.GetState(ctx, p.ID)
	if err != nil {
		if errors.Cause(err) == ErrStateNotFound {
			return State{
				ParentID:   p.ID,
				ParentName: p.DisplayName,
				StudentID:  p.LinkedStudentID,
			}, nil
		}
		return State{}, err
	}
	if state.ParentName == "" {
		state.ParentName = p.DisplayName
	}
	if state.StudentID == "" {
		state.StudentID = p.LinkedStudentID
	}
	return state, nil
}
