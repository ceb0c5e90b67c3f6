// Package dummydb provides in-memory repositories used by the test suites.
package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/alama/core/assessment"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		assessment *assessmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	enrollment struct {
		courseID  string
		studentID string
		createdAt time.Time
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
		order []string // insertion order
		// enrollments is the single store of the Course<->User relationship;
		// both views (course roster, student course list) derive from it.
		enrollments []enrollment
	}

	assessmentTable struct {
		sync.RWMutex
		table map[string]*assessment.Assessment
		order []string // insertion order
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		assessment: &assessmentTable{table: make(map[string]*assessment.Assessment)},
	}
	return db, nil
}
