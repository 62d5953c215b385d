package checklist

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

var testCatalog = []Item{
	{ID: "rapor-semester", Title: "Konfirmasi Penerimaan Rapor Semester", Category: CategoryAcademic, Required: true,
		Deadline: null.TimeFrom(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)), Position: 1},
	{ID: "pembayaran-spp", Title: "Konfirmasi Pembayaran SPP Bulan Ini", Category: CategoryAdministrative, Required: true,
		Deadline: null.TimeFrom(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)), Position: 2},
	{ID: "izin-kegiatan", Title: "Izin Kegiatan Ekstrakurikuler", Category: CategoryActivity, Position: 3},
	{ID: "data-kesehatan", Title: "Update Data Kesehatan Anak", Category: CategoryAdministrative, Position: 4},
}

func TestItemOverdue(t *testing.T) {
	deadline := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	withDeadline := Item{ID: "pembayaran-spp", Deadline: null.TimeFrom(deadline)}
	noDeadline := Item{ID: "izin-kegiatan"}

	tests := []struct {
		name    string
		item    Item
		checked bool
		now     time.Time
		want    bool
	}{
		{name: "past deadline unchecked", item: withDeadline, now: deadline.Add(time.Hour), want: true},
		{name: "past deadline checked", item: withDeadline, checked: true, now: deadline.Add(time.Hour)},
		{name: "before deadline", item: withDeadline, now: deadline.Add(-time.Hour)},
		{name: "at deadline", item: withDeadline, now: deadline},
		{name: "no deadline", item: noDeadline, now: deadline.Add(time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Overdue(tt.checked, tt.now); got != tt.want {
				t.Errorf("Overdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	t.Run("partial completion", func(t *testing.T) {
		state := State{
			ParentID:       "parent1",
			ParentName:     "Budi Santoso",
			StudentID:      "std1",
			CheckedItemIDs: []string{"rapor-semester", "izin-kegiatan"},
		}

		smr := Summarize(state, testCatalog, now)
		if smr.TotalItems != 4 || smr.CheckedItems != 2 {
			t.Errorf("counts = %d/%d, want 4/2", smr.TotalItems, smr.CheckedItems)
		}
		if smr.RequiredItems != 2 || smr.RequiredChecked != 1 {
			t.Errorf("required counts = %d/%d, want 2/1", smr.RequiredItems, smr.RequiredChecked)
		}
		if smr.CompletionRate != 50 {
			t.Errorf("completion rate = %v, want 50", smr.CompletionRate)
		}
		if smr.RequiredRate != 50 {
			t.Errorf("required rate = %v, want 50", smr.RequiredRate)
		}
		if smr.Status != StatusIncomplete {
			t.Errorf("status = %s, want %s", smr.Status, StatusIncomplete)
		}

		// pembayaran-spp: unchecked, deadline 15 Jan, now 20 Jan
		var overdue []string
		for _, it := range smr.Items {
			if it.Overdue {
				overdue = append(overdue, it.ID)
			}
		}
		if len(overdue) != 1 || overdue[0] != "pembayaran-spp" {
			t.Errorf("overdue items = %v, want [pembayaran-spp]", overdue)
		}
	})

	t.Run("required complete", func(t *testing.T) {
		state := State{ParentID: "parent1", CheckedItemIDs: []string{"rapor-semester", "pembayaran-spp"}}
		smr := Summarize(state, testCatalog, now)
		if smr.Status != StatusRequiredComplete {
			t.Errorf("status = %s, want %s", smr.Status, StatusRequiredComplete)
		}
		if smr.RequiredRate != 100 {
			t.Errorf("required rate = %v, want 100", smr.RequiredRate)
		}
	})

	t.Run("complete", func(t *testing.T) {
		state := State{ParentID: "parent1", CheckedItemIDs: []string{"rapor-semester", "pembayaran-spp", "izin-kegiatan", "data-kesehatan"}}
		smr := Summarize(state, testCatalog, now)
		if smr.Status != StatusComplete {
			t.Errorf("status = %s, want %s", smr.Status, StatusComplete)
		}
		if smr.CompletionRate != 100 {
			t.Errorf("completion rate = %v, want 100", smr.CompletionRate)
		}
	})

	t.Run("empty state", func(t *testing.T) {
		smr := Summarize(State{ParentID: "parent1"}, testCatalog, now)
		if smr.CheckedItems != 0 || smr.CompletionRate != 0 {
			t.Errorf("counts = %d/%v, want 0/0", smr.CheckedItems, smr.CompletionRate)
		}
		if smr.Status != StatusIncomplete {
			t.Errorf("status = %s, want %s", smr.Status, StatusIncomplete)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		smr := Summarize(State{ParentID: "parent1", CheckedItemIDs: []string{"stale-id"}}, nil, now)
		if smr.CompletionRate != 0 || smr.RequiredRate != 0 {
			t.Errorf("rates = %v/%v, want 0/0", smr.CompletionRate, smr.RequiredRate)
		}
		if smr.Status != StatusIncomplete {
			t.Errorf("status = %s, want %s", smr.Status, StatusIncomplete)
		}
	})
}

func TestSummarizeAll(t *testing.T) {
	now := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	t.Run("two parents", func(t *testing.T) {
		states := []State{
			{ParentID: "parent1", CheckedItemIDs: []string{"rapor-semester", "pembayaran-spp", "izin-kegiatan", "data-kesehatan"}},
			{ParentID: "parent2", CheckedItemIDs: []string{"rapor-semester"}},
		}

		recap := SummarizeAll(states, testCatalog, now)
		if recap.TotalParents != 2 {
			t.Errorf("total parents = %d, want 2", recap.TotalParents)
		}
		if recap.CompleteParents != 1 {
			t.Errorf("complete parents = %d, want 1", recap.CompleteParents)
		}
		// 5 checks over 2x4 slots
		if recap.AverageCompletion != 62.5 {
			t.Errorf("average completion = %v, want 62.5", recap.AverageCompletion)
		}
		// 3 required checks over 2x2 slots
		if recap.RequiredCompletion != 75 {
			t.Errorf("required completion = %v, want 75", recap.RequiredCompletion)
		}
		if len(recap.Summaries) != 2 {
			t.Fatalf("summaries = %d, want 2", len(recap.Summaries))
		}

		stats := make(map[string]CategoryStat, len(recap.PerCategory))
		for _, cs := range recap.PerCategory {
			stats[cs.Category] = cs
		}
		if cs := stats[CategoryAcademic]; cs.Slots != 2 || cs.Checked != 2 || cs.Rate != 100 {
			t.Errorf("academic stat = %+v, want 2/2/100", cs)
		}
		if cs := stats[CategoryAdministrative]; cs.Slots != 4 || cs.Checked != 2 || cs.Rate != 50 {
			t.Errorf("administrative stat = %+v, want 4/2/50", cs)
		}
		if cs := stats[CategoryActivity]; cs.Slots != 2 || cs.Checked != 1 || cs.Rate != 50 {
			t.Errorf("activity stat = %+v, want 2/1/50", cs)
		}
	})

	t.Run("no parents", func(t *testing.T) {
		recap := SummarizeAll(nil, testCatalog, now)
		if recap.TotalParents != 0 || recap.CompleteParents != 0 {
			t.Errorf("parents = %d/%d, want 0/0", recap.TotalParents, recap.CompleteParents)
		}
		if recap.AverageCompletion != 0 || recap.RequiredCompletion != 0 {
			t.Errorf("rates = %v/%v, want 0/0", recap.AverageCompletion, recap.RequiredCompletion)
		}
	})
}
