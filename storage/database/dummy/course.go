package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core/course"
)

type courseRepository struct {
	db     *courseTable
	asmtDB *assessmentTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, asmtDB: db.assessment}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	repo.db.order = append(repo.db.order, crs.ID)
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByTeacher(_ context.Context, teacherID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(crs *course.Course) bool { return crs.TeacherID == teacherID }), nil
}

func (repo *courseRepository) QueryCoursesByTeacherAndLevel(_ context.Context, teacherID, level string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(func(crs *course.Course) bool {
		return crs.TeacherID == teacherID && crs.Level == level
	}), nil
}

func (repo *courseRepository) QueryCoursesByStudent(_ context.Context, studentID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// enrollment order
	courses := make([]course.Course, 0)
	for _, e := range repo.db.enrollments {
		if e.studentID != studentID {
			continue
		}
		if crs, ok := repo.db.table[e.courseID]; ok {
			courses = append(courses, *crs)
		}
	}
	return courses, nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = remove(repo.db.order, id)

	// drop enrollments
	kept := repo.db.enrollments[:0]
	for _, e := range repo.db.enrollments {
		if e.courseID != id {
			kept = append(kept, e)
		}
	}
	repo.db.enrollments = kept

	// cascade: drop the course's assessments (and their marks with them)
	repo.asmtDB.Lock()
	defer repo.asmtDB.Unlock()
	for asmtID, asmt := range repo.asmtDB.table {
		if asmt.CourseID == id {
			delete(repo.asmtDB.table, asmtID)
			repo.asmtDB.order = remove(repo.asmtDB.order, asmtID)
		}
	}
	return nil
}

func (repo *courseRepository) AddStudent(_ context.Context, courseID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, e := range repo.db.enrollments {
		if e.courseID == courseID && e.studentID == studentID {
			return nil // already enrolled
		}
	}
	repo.db.enrollments = append(repo.db.enrollments, enrollment{
		courseID:  courseID,
		studentID: studentID,
		createdAt: time.Now().UTC(),
	})
	return nil
}

func (repo *courseRepository) RemoveStudent(_ context.Context, courseID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	kept := repo.db.enrollments[:0]
	for _, e := range repo.db.enrollments {
		if !(e.courseID == courseID && e.studentID == studentID) {
			kept = append(kept, e)
		}
	}
	repo.db.enrollments = kept
	return nil
}

func (repo *courseRepository) EnrolledStudentIDs(_ context.Context, courseID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, e := range repo.db.enrollments {
		if e.courseID == courseID {
			ids = append(ids, e.studentID)
		}
	}
	return ids, nil
}

func (repo *courseRepository) IsEnrolled(_ context.Context, courseID, studentID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.enrollments {
		if e.courseID == courseID && e.studentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

// query returns matching courses in insertion order.
func (repo *courseRepository) query(match func(*course.Course) bool) []course.Course {
	courses := make([]course.Course, 0)
	for _, id := range repo.db.order {
		if crs, ok := repo.db.table[id]; ok && match(crs) {
			courses = append(courses, *crs)
		}
	}
	return courses
}

func remove(ids []string, id string) []string {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
