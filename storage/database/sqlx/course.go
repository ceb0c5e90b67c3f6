package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Level     string    `db:"level"`
	TeacherID string    `db:"teacher_id"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:        r.ID,
		Name:      r.Name,
		Level:     r.Level,
		TeacherID: r.TeacherID,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO courses (id, name, level, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		crs.ID, crs.Name, crs.Level, crs.TeacherID, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM courses WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by ID")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM courses WHERE teacher_id = $1 ORDER BY created_at, id`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by teacher")
	}
	return toCourses(rows), nil
}

func (repo *courseRepository) QueryCoursesByTeacherAndLevel(ctx context.Context, teacherID, level string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM courses WHERE teacher_id = $1 AND level = $2 ORDER BY created_at, id`, teacherID, level)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by teacher and level")
	}
	return toCourses(rows), nil
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT c.*
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1
		ORDER BY e.created_at, c.id`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by student")
	}
	return toCourses(rows), nil
}

// DeleteCourse relies on ON DELETE CASCADE to drop the course's enrollments,
// assessments and marks in the same statement.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO enrollments (course_id, student_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT DO NOTHING`,
		courseID, studentID,
	)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return nil
}

func (repo *courseRepository) EnrolledStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	ids := make([]string, 0)
	err := repo.db.SelectContext(ctx, &ids,
		`SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY created_at, student_id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrolled students")
	}
	return ids, nil
}

func (repo *courseRepository) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var enrolled bool
	err := repo.db.GetContext(ctx, &enrolled,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE course_id = $1 AND student_id = $2)`, courseID, studentID)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}

func toCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.toCourse())
	}
	return courses
}
