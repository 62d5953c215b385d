package checklist_test

import (
	"context"
	"testing"
	"time"

	"sekolahku/core"
	"sekolahku/core/checklist"
	"sekolahku/core/user"
	inmemdb "sekolahku/storage/database/inmem"
	testutil "sekolahku/tests"
)

func setup(t *testing.T) (checklist.Service, *inmemdb.DB) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	if err = inmemdb.Seed(db); err != nil {
		t.Fatalf("inmemdb.Seed(): %v", err)
	}
	return checklist.NewService(inmemdb.NewChecklistRepository(db)), db
}

func parentPrincipal(t *testing.T, db *inmemdb.DB) user.Principal {
	t.Helper()

	usr, err := inmemdb.NewUserRepository(db).GetUserByUsername(context.Background(), "orangtua123")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	return usr.Principal()
}

func TestService_Summary(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	parent := parentPrincipal(t, db)

	t.Run("fresh parent gets an empty view", func(t *testing.T) {
		smr, err := svc.Summary(ctx, parent)
		if err != nil {
			t.Fatalf("Summary(): %v", err)
		}
		if smr.ParentID != parent.ID {
			t.Errorf("parent id = %s, want %s", smr.ParentID, parent.ID)
		}
		if smr.TotalItems != 6 || smr.CheckedItems != 0 {
			t.Errorf("counts = %d/%d, want 6/0", smr.TotalItems, smr.CheckedItems)
		}
		if smr.Status != checklist.StatusIncomplete {
			t.Errorf("status = %s, want %s", smr.Status, checklist.StatusIncomplete)
		}
		if smr.StudentID != parent.LinkedStudentID {
			t.Errorf("student id = %s, want %s", smr.StudentID, parent.LinkedStudentID)
		}
	})

	t.Run("parents only", func(t *testing.T) {
		for _, role := range []string{user.RoleStudent, user.RoleTeacher, user.RoleAdmin} {
			if _, err := svc.Summary(ctx, user.Principal{ID: "x", Role: role}); err != core.ErrPermissionDenied {
				t.Errorf("Summary(%s) error = %v, want %v", role, err, core.ErrPermissionDenied)
			}
		}
	})
}

func TestService_Check(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	parent := parentPrincipal(t, db)

	// pin the clock so overdue flags are stable
	checklist.NowFunc = func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) }
	defer func() { checklist.NowFunc = time.Now }()

	t.Run("check", func(t *testing.T) {
		smr, err := svc.Check(ctx, parent, checklist.SetChecked{ItemID: "pembayaran-spp", Checked: true})
		if err != nil {
			t.Fatalf("Check(): %v", err)
		}
		if smr.CheckedItems != 1 || smr.RequiredChecked != 1 {
			t.Errorf("counts = %d/%d, want 1/1", smr.CheckedItems, smr.RequiredChecked)
		}
		if smr.LastUpdatedAt.IsZero() {
			t.Error("last updated was not set")
		}
	})

	t.Run("checking twice keeps one row", func(t *testing.T) {
		smr, err := svc.Check(ctx, parent, checklist.SetChecked{ItemID: "pembayaran-spp", Checked: true})
		if err != nil {
			t.Fatalf("Check(): %v", err)
		}
		if smr.CheckedItems != 1 {
			t.Errorf("checked items = %d, want 1", smr.CheckedItems)
		}
	})

	t.Run("uncheck", func(t *testing.T) {
		smr, err := svc.Check(ctx, parent, checklist.SetChecked{ItemID: "pembayaran-spp", Checked: false})
		if err != nil {
			t.Fatalf("Check(): %v", err)
		}
		if smr.CheckedItems != 0 {
			t.Errorf("checked items = %d, want 0", smr.CheckedItems)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Check(ctx, parent, checklist.SetChecked{ItemID: "not-a-thing", Checked: true})
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("Check() error = %v, want *core.ValidationError", err)
		}
		if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "item_id" {
			t.Errorf("fields = %+v, want field item_id", vErr.Fields)
		}
	})

	t.Run("missing item id", func(t *testing.T) {
		if _, err := svc.Check(ctx, parent, checklist.SetChecked{Checked: true}); err == nil {
			t.Error("Check() accepted an empty item id")
		}
	})

	t.Run("parents only", func(t *testing.T) {
		p := user.Principal{ID: "x", Role: user.RoleAdmin}
		if _, err := svc.Check(ctx, p, checklist.SetChecked{ItemID: "pembayaran-spp", Checked: true}); err != core.ErrPermissionDenied {
			t.Errorf("Check() error = %v, want %v", err, core.ErrPermissionDenied)
		}
	})
}

func TestService_Recap(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	parent := parentPrincipal(t, db)
	admin := user.Principal{ID: "adm", Role: user.RoleAdmin}

	t.Run("admins only", func(t *testing.T) {
		for _, role := range []string{user.RoleStudent, user.RoleParent, user.RoleTeacher} {
			if _, err := svc.Recap(ctx, user.Principal{ID: "x", Role: role}); err != core.ErrPermissionDenied {
				t.Errorf("Recap(%s) error = %v, want %v", role, err, core.ErrPermissionDenied)
			}
		}
	})

	t.Run("zero-check parents still count", func(t *testing.T) {
		recap, err := svc.Recap(ctx, admin)
		if err != nil {
			t.Fatalf("Recap(): %v", err)
		}
		if recap.TotalParents != 1 {
			t.Errorf("total parents = %d, want 1", recap.TotalParents)
		}
		if recap.AverageCompletion != 0 {
			t.Errorf("average completion = %v, want 0", recap.AverageCompletion)
		}
	})

	t.Run("after a check-in", func(t *testing.T) {
		// a second parent with one check
		other := testutil.CreateUser(t, inmemdb.NewUserRepository(db),
			"Andi Wijaya", "orangtua456", "orangtua2@test.id", "secret", user.RoleParent, "", true)
		if _, err := svc.Check(ctx, other.Principal(), checklist.SetChecked{ItemID: "rapor-semester", Checked: true}); err != nil {
			t.Fatalf("Check(): %v", err)
		}
		if _, err := svc.Check(ctx, parent, checklist.SetChecked{ItemID: "pembayaran-spp", Checked: true}); err != nil {
			t.Fatalf("Check(): %v", err)
		}

		recap, err := svc.Recap(ctx, admin)
		if err != nil {
			t.Fatalf("Recap(): %v", err)
		}
		if recap.TotalParents != 2 {
			t.Errorf("total parents = %d, want 2", recap.TotalParents)
		}
		var checked int
		for _, smr := range recap.Summaries {
			checked += smr.CheckedItems
		}
		if checked != 2 {
			t.Errorf("checked items across parents = %d, want 2", checked)
		}
	})
}

func TestService_Catalog(t *testing.T) {
	svc, _ := setup(t)

	items, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog(): %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("catalog has %d items, want 6", len(items))
	}
	// catalog comes back in display order
	for i := 1; i < len(items); i++ {
		if items[i-1].Position > items[i].Position {
			t.Fatalf("catalog out of order at %d: %+v", i, items)
		}
	}
	var required int
	for _, it := range items {
		if it.Required {
			required++
		}
	}
	if required != 3 {
		t.Errorf("required items = %d, want 3", required)
	}
}
