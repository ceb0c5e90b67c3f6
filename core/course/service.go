package course

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrNotOwned        = errors.New("not authorized to access this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		QueryCoursesByTeacherAndLevel(ctx context.Context, teacherID, level string) ([]Course, error)
		// QueryCoursesByStudent returns the courses a student is enrolled in,
		// in enrollment order.
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		// DeleteCourse removes a course along with its assessments, marks and
		// enrollments.
		DeleteCourse(ctx context.Context, id string) error

		// AddStudent enrolls a student; it is a no-op when already enrolled.
		AddStudent(ctx context.Context, courseID, studentID string) error
		// RemoveStudent unenrolls a student; it is a no-op when not enrolled.
		RemoveStudent(ctx context.Context, courseID, studentID string) error
		// EnrolledStudentIDs returns student IDs in enrollment order.
		EnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error)
		IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

func (svc *Service) Create(ctx context.Context, teacherID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:      nc.Name,
		Level:     nc.Level,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryByLevel(ctx context.Context, teacherID, level string) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacherAndLevel(ctx, teacherID, level)
}

// GetOwned fetches a course and checks that it belongs to the given teacher.
func (svc *Service) GetOwned(ctx context.Context, teacherID, courseID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if crs.TeacherID != teacherID {
		return Course{}, ErrNotOwned
	}
	return crs, nil
}

func (svc *Service) Delete(ctx context.Context, teacherID, courseID string) error {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, crs.ID)
}

func (svc *Service) AddStudent(ctx context.Context, teacherID, courseID, studentID string) error {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	std, err := svc.usrRepo.GetUserByID(ctx, studentID)
	if err != nil || !std.IsStudent() {
		return ErrStudentNotFound
	}
	return svc.repo.AddStudent(ctx, crs.ID, std.ID)
}

func (svc *Service) RemoveStudent(ctx context.Context, teacherID, courseID, studentID string) error {
	crs, err := svc.GetOwned(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	return svc.repo.RemoveStudent(ctx, crs.ID, studentID)
}

// EnrolledStudents returns the users enrolled in a course, in enrollment order.
func (svc *Service) EnrolledStudents(ctx context.Context, courseID string) ([]user.User, error) {
	ids, err := svc.repo.EnrolledStudentIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	users, err := svc.usrRepo.GetUsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	// preserve enrollment order
	byID := make(map[string]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]user.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}
