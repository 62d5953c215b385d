package inmemdb

import (
	"sync"
	"time"

	"sekolahku/core/checklist"
	"sekolahku/core/grade"
	"sekolahku/core/student"
	"sekolahku/core/subject"
	"sekolahku/core/user"
)

type (
	DB struct {
		user      *userTable
		student   *studentTable
		subject   *subjectTable
		grade     *gradeTable
		checklist *checklistTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	studentTable struct {
		t          map[string]*student.Student
		attendance map[string]*student.AttendanceTally
		mutex      sync.RWMutex
	}

	subjectTable struct {
		t     map[string]*subject.Subject
		mutex sync.RWMutex
	}

	gradeTable struct {
		midFinals  map[string]*grade.MidFinal // keyed on studentID+subjectID
		dailies    map[string]*grade.Daily    // keyed on studentID+subjectID+category
		categories map[string]*grade.Category
		mutex      sync.RWMutex
	}

	checklistTable struct {
		items  map[string]*checklist.Item
		checks map[string]map[string]time.Time // parentID -> itemID -> checkedAt
		mutex  sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{t: make(map[string]*user.User)},
		student: &studentTable{
			t:          make(map[string]*student.Student),
			attendance: make(map[string]*student.AttendanceTally),
		},
		subject: &subjectTable{t: make(map[string]*subject.Subject)},
		grade: &gradeTable{
			midFinals:  make(map[string]*grade.MidFinal),
			dailies:    make(map[string]*grade.Daily),
			categories: make(map[string]*grade.Category),
		},
		checklist: &checklistTable{
			items:  make(map[string]*checklist.Item),
			checks: make(map[string]map[string]time.Time),
		},
	}
	return db, nil
}
