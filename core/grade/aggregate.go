package grade

import (
	"github.com/montanaflynn/stats"
	"github.com/volatiletech/null/v8"

	"sekolahku/core/student"
	"sekolahku/core/subject"
)

// KKM statuses
const (
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusUngraded = "ungraded"
)

// ScorePolicy combines the UTS/UAS average and the daily-grade average into
// one final score. The weights are injectable on purpose: the school has not
// settled on a formula, so it must stay a parameter rather than a constant.
type ScorePolicy struct {
	MidFinalWeight float64
	DailyWeight    float64
}

// DefaultScorePolicy grades on the UTS/UAS average alone, the behavior of the
// per-student subject view.
var DefaultScorePolicy = ScorePolicy{MidFinalWeight: 1}

// Final applies the policy. Every component with a non-zero weight must be
// defined, otherwise the result is ungraded; a partially-known composite would
// misleadingly imply failure.
func (p ScorePolicy) Final(midFinal, daily null.Float64) null.Float64 {
	totalWeight := p.MidFinalWeight + p.DailyWeight
	if totalWeight == 0 {
		return null.Float64{}
	}
	var sum float64
	if p.MidFinalWeight > 0 {
		if !midFinal.Valid {
			return null.Float64{}
		}
		sum += p.MidFinalWeight * midFinal.Float64
	}
	if p.DailyWeight > 0 {
		if !daily.Valid {
			return null.Float64{}
		}
		sum += p.DailyWeight * daily.Float64
	}
	return null.Float64From(sum / totalWeight)
}

// LetterGrade maps a defined final score to the report-card letter bands.
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "E"
	}
}

// KKMStatus classifies a final score against the subject's minimum competency
// threshold. The boundary is inclusive: score == threshold passes.
func KKMStatus(final null.Float64, kkm float64) string {
	if !final.Valid {
		return StatusUngraded
	}
	if final.Float64 >= kkm {
		return StatusPassed
	}
	return StatusFailed
}

// StudentSubjectSummary is the derived per-student-per-subject view handed to
// presentation. It is always recomputed from the raw rows, never stored.
type StudentSubjectSummary struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	ClassName   string  `json:"class_name"`
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	KKM         float64 `json:"kkm"`

	UTS             null.Float64 `json:"uts_score"`
	UAS             null.Float64 `json:"uas_score"`
	MidFinalAverage null.Float64 `json:"mid_final_average"`
	DailyAverage    null.Float64 `json:"daily_average"`

	FinalScore  null.Float64 `json:"final_score"`
	LetterGrade string       `json:"letter_grade,omitempty"` // empty when ungraded
	KKMStatus   string       `json:"kkm_status"`
}

func (s StudentSubjectSummary) StudentRef() string { return s.StudentID }

// Aggregate computes a StudentSubjectSummary for each distinct
// (student, subject) pair present in either grade table. Pairs referencing a
// student or subject missing from the register are dropped (the raw row is an
// orphan; views always join on the register). The function is pure: identical
// inputs yield identical output, in first-seen input order.
func Aggregate(
	students []student.Student,
	subjects []subject.Subject,
	midFinals []MidFinal,
	dailies []Daily,
	categories []Category,
	policy ScorePolicy,
) []StudentSubjectSummary {
	studentsByID := make(map[string]student.Student, len(students))
	for _, std := range students {
		studentsByID[std.ID] = std
	}
	subjectsByID := make(map[string]subject.Subject, len(subjects))
	for _, sub := range subjects {
		subjectsByID[sub.ID] = sub
	}
	activeCategories := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat.Active {
			activeCategories[cat.Name] = true
		}
	}

	type pairKey struct{ studentID, subjectID string }

	midFinalsByPair := make(map[pairKey]MidFinal, len(midFinals))
	dailyScoresByPair := make(map[pairKey][]float64)
	pairs := make([]pairKey, 0, len(midFinals))
	seen := make(map[pairKey]bool, len(midFinals))

	for _, g := range midFinals {
		key := pairKey{g.StudentID, g.SubjectID}
		midFinalsByPair[key] = g
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}
	for _, d := range dailies {
		key := pairKey{d.StudentID, d.SubjectID}
		if activeCategories[d.CategoryName] && scoreInRange(d.Score) {
			dailyScoresByPair[key] = append(dailyScoresByPair[key], d.Score.Float64)
		}
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}

	summaries := make([]StudentSubjectSummary, 0, len(pairs))
	for _, key := range pairs {
		std, ok := studentsByID[key.studentID]
		if !ok {
			continue
		}
		sub, ok := subjectsByID[key.subjectID]
		if !ok {
			continue
		}

		smr := StudentSubjectSummary{
			StudentID:   std.ID,
			StudentName: std.Name,
			ClassName:   std.ClassName,
			SubjectID:   sub.ID,
			SubjectName: sub.Name,
			KKM:         sub.KKM,
		}
		if g, ok := midFinalsByPair[key]; ok {
			if scoreInRange(g.UTS) {
				smr.UTS = g.UTS
			}
			if scoreInRange(g.UAS) {
				smr.UAS = g.UAS
			}
			smr.MidFinalAverage = g.Average()
		}
		smr.DailyAverage = meanScore(dailyScoresByPair[key])
		smr.FinalScore = policy.Final(smr.MidFinalAverage, smr.DailyAverage)
		if smr.FinalScore.Valid {
			smr.LetterGrade = LetterGrade(smr.FinalScore.Float64)
		}
		smr.KKMStatus = KKMStatus(smr.FinalScore, sub.KKM)

		summaries = append(summaries, smr)
	}
	return summaries
}

// meanScore is the mean of the present scores, ungraded when there are none.
func meanScore(scores []float64) null.Float64 {
	mean, err := stats.Mean(scores)
	if err != nil {
		return null.Float64{}
	}
	return null.Float64From(mean)
}

// StudentReport is the per-student roll-up across subjects shown on report
// views: how many subjects are graded, how many of those pass their KKM, and
// the mean final score over graded subjects.
type StudentReport struct {
	StudentID      string       `json:"student_id"`
	StudentName    string       `json:"student_name"`
	ClassName      string       `json:"class_name"`
	TotalSubjects  int          `json:"total_subjects"`
	GradedSubjects int          `json:"graded_subjects"`
	PassedSubjects int          `json:"passed_subjects"`
	AverageScore   null.Float64 `json:"average_score"`
}

func (r StudentReport) StudentRef() string { return r.StudentID }

// Report groups summaries per student, in first-seen order.
func Report(summaries []StudentSubjectSummary) []StudentReport {
	reports := make([]StudentReport, 0)
	idx := make(map[string]int)
	scores := make(map[string][]float64)

	for _, smr := range summaries {
		i, ok := idx[smr.StudentID]
		if !ok {
			i = len(reports)
			idx[smr.StudentID] = i
			reports = append(reports, StudentReport{
				StudentID:   smr.StudentID,
				StudentName: smr.StudentName,
				ClassName:   smr.ClassName,
			})
		}
		reports[i].TotalSubjects++
		if smr.FinalScore.Valid {
			reports[i].GradedSubjects++
			scores[smr.StudentID] = append(scores[smr.StudentID], smr.FinalScore.Float64)
		}
		if smr.KKMStatus == StatusPassed {
			reports[i].PassedSubjects++
		}
	}
	for i := range reports {
		reports[i].AverageScore = meanScore(scores[reports[i].StudentID])
	}
	return reports
}
