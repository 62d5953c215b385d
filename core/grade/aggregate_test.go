package grade

import (
	"testing"

	"github.com/volatiletech/null/v8"

	"sekolahku/core/student"
	"sekolahku/core/subject"
)

func TestMidFinalAverage(t *testing.T) {
	tests := []struct {
		name string
		uts  null.Float64
		uas  null.Float64
		want null.Float64
	}{
		{name: "both present", uts: null.Float64From(85), uas: null.Float64From(88), want: null.Float64From(86.5)},
		{name: "uts only", uts: null.Float64From(72)},
		{name: "uas only", uas: null.Float64From(90)},
		{name: "none"},
		{name: "out of range uts", uts: null.Float64From(101), uas: null.Float64From(88)},
		{name: "negative uas", uts: null.Float64From(85), uas: null.Float64From(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := MidFinal{UTS: tt.uts, UAS: tt.uas}
			if got := g.Average(); got != tt.want {
				t.Errorf("Average() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{90, "A"},
		{89.9, "B"},
		{80, "B"},
		{79.9, "C"},
		{70, "C"},
		{69.9, "D"},
		{60, "D"},
		{59.9, "E"},
		{0, "E"},
	}
	for _, tt := range tests {
		if got := LetterGrade(tt.score); got != tt.want {
			t.Errorf("LetterGrade(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestKKMStatus(t *testing.T) {
	tests := []struct {
		name  string
		final null.Float64
		kkm   float64
		want  string
	}{
		{name: "above threshold", final: null.Float64From(80), kkm: 75, want: StatusPassed},
		{name: "at threshold", final: null.Float64From(75), kkm: 75, want: StatusPassed},
		{name: "below threshold", final: null.Float64From(74.9), kkm: 75, want: StatusFailed},
		{name: "no score", kkm: 75, want: StatusUngraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KKMStatus(tt.final, tt.kkm); got != tt.want {
				t.Errorf("KKMStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScorePolicyFinal(t *testing.T) {
	blended := ScorePolicy{MidFinalWeight: 0.6, DailyWeight: 0.4}

	tests := []struct {
		name     string
		policy   ScorePolicy
		midFinal null.Float64
		daily    null.Float64
		want     null.Float64
	}{
		{name: "default uses mid-final only", policy: DefaultScorePolicy, midFinal: null.Float64From(86.5), daily: null.Float64From(10), want: null.Float64From(86.5)},
		{name: "default without mid-final", policy: DefaultScorePolicy, daily: null.Float64From(90)},
		{name: "blended", policy: blended, midFinal: null.Float64From(80), daily: null.Float64From(90), want: null.Float64From(84)},
		{name: "blended missing daily", policy: blended, midFinal: null.Float64From(80)},
		{name: "blended missing mid-final", policy: blended, daily: null.Float64From(90)},
		{name: "zero weights", policy: ScorePolicy{}, midFinal: null.Float64From(80), daily: null.Float64From(90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Final(tt.midFinal, tt.daily); got != tt.want {
				t.Errorf("Final() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	students := []student.Student{
		{ID: "std1", Name: "Ahmad Rizki", ClassName: "7A"},
		{ID: "std2", Name: "Siti Nurhaliza", ClassName: "7A"},
	}
	subjects := []subject.Subject{
		{ID: "mtk", Name: "Matematika", KKM: 75},
		{ID: "bin", Name: "Bahasa Indonesia", KKM: 70},
	}
	categories := []Category{
		{ID: "ulangan-1", Name: "Ulangan 1", Active: true, Position: 1},
		{ID: "ulangan-2", Name: "Ulangan 2", Active: false, Position: 2},
	}
	midFinals := []MidFinal{
		{StudentID: "std1", SubjectID: "mtk", UTS: null.Float64From(85), UAS: null.Float64From(88)},
		{StudentID: "std2", SubjectID: "mtk", UTS: null.Float64From(60), UAS: null.Float64From(70)},
		{StudentID: "std1", SubjectID: "bin", UTS: null.Float64From(72)}, // UAS pending
		{StudentID: "ghost", SubjectID: "mtk", UTS: null.Float64From(50), UAS: null.Float64From(50)},
		{StudentID: "std1", SubjectID: "nope", UTS: null.Float64From(50), UAS: null.Float64From(50)},
	}
	dailies := []Daily{
		{StudentID: "std1", SubjectID: "mtk", CategoryName: "Ulangan 1", Score: null.Float64From(80)},
		{StudentID: "std1", SubjectID: "mtk", CategoryName: "Ulangan 2", Score: null.Float64From(10)}, // inactive category
		{StudentID: "std2", SubjectID: "bin", CategoryName: "Ulangan 1", Score: null.Float64From(95)},
	}

	got := Aggregate(students, subjects, midFinals, dailies, categories, DefaultScorePolicy)
	if len(got) != 4 {
		t.Fatalf("Aggregate() returned %d summaries, want 4", len(got))
	}

	byKey := make(map[string]StudentSubjectSummary, len(got))
	for _, smr := range got {
		byKey[smr.StudentID+"/"+smr.SubjectID] = smr
	}

	ahmadMtk := byKey["std1/mtk"]
	if ahmadMtk.FinalScore != null.Float64From(86.5) {
		t.Errorf("ahmad/mtk final = %v, want 86.5", ahmadMtk.FinalScore)
	}
	if ahmadMtk.LetterGrade != "B" {
		t.Errorf("ahmad/mtk letter = %s, want B", ahmadMtk.LetterGrade)
	}
	if ahmadMtk.KKMStatus != StatusPassed {
		t.Errorf("ahmad/mtk status = %s, want %s", ahmadMtk.KKMStatus, StatusPassed)
	}
	// the inactive category score must not drag the daily average down
	if ahmadMtk.DailyAverage != null.Float64From(80) {
		t.Errorf("ahmad/mtk daily average = %v, want 80", ahmadMtk.DailyAverage)
	}

	sitiMtk := byKey["std2/mtk"]
	if sitiMtk.FinalScore != null.Float64From(65) {
		t.Errorf("siti/mtk final = %v, want 65", sitiMtk.FinalScore)
	}
	if sitiMtk.KKMStatus != StatusFailed {
		t.Errorf("siti/mtk status = %s, want %s", sitiMtk.KKMStatus, StatusFailed)
	}

	ahmadBin := byKey["std1/bin"]
	if ahmadBin.FinalScore.Valid {
		t.Errorf("ahmad/bin final = %v, want ungraded", ahmadBin.FinalScore)
	}
	if ahmadBin.LetterGrade != "" {
		t.Errorf("ahmad/bin letter = %s, want empty", ahmadBin.LetterGrade)
	}
	if ahmadBin.KKMStatus != StatusUngraded {
		t.Errorf("ahmad/bin status = %s, want %s", ahmadBin.KKMStatus, StatusUngraded)
	}

	// daily-only pair still shows up, ungraded under the default policy
	sitiBin := byKey["std2/bin"]
	if sitiBin.DailyAverage != null.Float64From(95) {
		t.Errorf("siti/bin daily average = %v, want 95", sitiBin.DailyAverage)
	}
	if sitiBin.KKMStatus != StatusUngraded {
		t.Errorf("siti/bin status = %s, want %s", sitiBin.KKMStatus, StatusUngraded)
	}

	// orphan pairs are dropped
	if _, ok := byKey["ghost/mtk"]; ok {
		t.Error("unknown student must be dropped")
	}
	if _, ok := byKey["std1/nope"]; ok {
		t.Error("unknown subject must be dropped")
	}
}

func TestReport(t *testing.T) {
	summaries := []StudentSubjectSummary{
		{StudentID: "std1", StudentName: "Ahmad Rizki", ClassName: "7A", FinalScore: null.Float64From(86.5), KKMStatus: StatusPassed},
		{StudentID: "std1", StudentName: "Ahmad Rizki", ClassName: "7A", FinalScore: null.Float64From(65), KKMStatus: StatusFailed},
		{StudentID: "std1", StudentName: "Ahmad Rizki", ClassName: "7A", KKMStatus: StatusUngraded},
		{StudentID: "std2", StudentName: "Siti Nurhaliza", ClassName: "7A", KKMStatus: StatusUngraded},
	}

	got := Report(summaries)
	if len(got) != 2 {
		t.Fatalf("Report() returned %d reports, want 2", len(got))
	}

	ahmad := got[0]
	if ahmad.StudentID != "std1" {
		t.Fatalf("reports out of order: got %s first", ahmad.StudentID)
	}
	if ahmad.TotalSubjects != 3 || ahmad.GradedSubjects != 2 || ahmad.PassedSubjects != 1 {
		t.Errorf("ahmad counts = %d/%d/%d, want 3/2/1",
			ahmad.TotalSubjects, ahmad.GradedSubjects, ahmad.PassedSubjects)
	}
	if ahmad.AverageScore != null.Float64From(75.75) {
		t.Errorf("ahmad average = %v, want 75.75", ahmad.AverageScore)
	}

	siti := got[1]
	if siti.TotalSubjects != 1 || siti.GradedSubjects != 0 || siti.PassedSubjects != 0 {
		t.Errorf("siti counts = %d/%d/%d, want 1/0/0",
			siti.TotalSubjects, siti.GradedSubjects, siti.PassedSubjects)
	}
	if siti.AverageScore.Valid {
		t.Errorf("siti average = %v, want ungraded", siti.AverageScore)
	}
}

func TestReportEmpty(t *testing.T) {
	if got := Report(nil); len(got) != 0 {
		t.Errorf("Report(nil) = %v, want empty", got)
	}
}
