package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core/assessment"
)

type assessmentRepository struct {
	db *sqlx.DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *sqlx.DB) assessment.Repository {
	return &assessmentRepository{db: db}
}

type assessmentRow struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	Name         string    `db:"name"`
	Type         string    `db:"type"`
	MaxMarks     float64   `db:"max_marks"`
	AcademicYear string    `db:"academic_year"`
	Term         string    `db:"term"`
	CreatedAt    null.Time `db:"created_at"`
	UpdatedAt    null.Time `db:"updated_at"`
}

func (r assessmentRow) toAssessment() assessment.Assessment {
	return assessment.Assessment{
		ID:           r.ID,
		CourseID:     r.CourseID,
		Name:         r.Name,
		Type:         r.Type,
		MaxMarks:     r.MaxMarks,
		AcademicYear: r.AcademicYear,
		Term:         r.Term,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

type markRow struct {
	AssessmentID string      `db:"assessment_id"`
	StudentID    string      `db:"student_id"`
	Score        float64     `db:"score"`
	Comment      null.String `db:"comment"`
}

func (r markRow) toMark() assessment.Mark {
	return assessment.Mark{
		StudentID: r.StudentID,
		Score:     r.Score,
		Comment:   r.Comment.String,
	}
}

func (repo *assessmentRepository) CreateAssessment(ctx context.Context, asmt assessment.Assessment) (assessment.Assessment, error) {
	asmt.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments (id, course_id, name, type, max_marks, academic_year, term, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		asmt.ID, asmt.CourseID, asmt.Name, asmt.Type, asmt.MaxMarks, asmt.AcademicYear, asmt.Term, asmt.CreatedAt, asmt.UpdatedAt,
	)
	if err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	if err = insertMarks(ctx, tx, asmt.ID, asmt.Marks); err != nil {
		return assessment.Assessment{}, err
	}
	if err = tx.Commit(); err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "creating assessment")
	}
	return asmt, nil
}

func (repo *assessmentRepository) GetAssessmentByID(ctx context.Context, id string) (assessment.Assessment, error) {
	var row assessmentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM assessments WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return assessment.Assessment{}, assessment.ErrNotFound
		}
		return assessment.Assessment{}, errors.Wrap(err, "getting assessment by ID")
	}

	asmt := row.toAssessment()
	var marks []markRow
	err = repo.db.SelectContext(ctx, &marks,
		`SELECT * FROM marks WHERE assessment_id = $1 ORDER BY student_id`, id)
	if err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "getting assessment marks")
	}
	asmt.Marks = toMarks(marks)
	return asmt, nil
}

func (repo *assessmentRepository) QueryAssessmentsByCourse(ctx context.Context, courseID string) ([]assessment.Assessment, error) {
	var rows []assessmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM assessments WHERE course_id = $1 ORDER BY created_at, id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments by course")
	}

	var marks []markRow
	err = repo.db.SelectContext(ctx, &marks, `
		SELECT m.*
		FROM marks m
		JOIN assessments a ON a.id = m.assessment_id
		WHERE a.course_id = $1
		ORDER BY m.student_id`,
		courseID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessment marks")
	}
	byAssessment := make(map[string][]assessment.Mark, len(rows))
	for _, m := range marks {
		byAssessment[m.AssessmentID] = append(byAssessment[m.AssessmentID], m.toMark())
	}

	assessments := make([]assessment.Assessment, 0, len(rows))
	for _, r := range rows {
		asmt := r.toAssessment()
		asmt.Marks = byAssessment[asmt.ID]
		if asmt.Marks == nil {
			asmt.Marks = []assessment.Mark{}
		}
		assessments = append(assessments, asmt)
	}
	return assessments, nil
}

func (repo *assessmentRepository) ReplaceMarks(ctx context.Context, assessmentID string, marks []assessment.Mark) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "replacing marks")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE assessments SET updated_at = now() WHERE id = $1`, assessmentID)
	if err != nil {
		return errors.Wrap(err, "replacing marks")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM marks WHERE assessment_id = $1`, assessmentID); err != nil {
		return errors.Wrap(err, "replacing marks")
	}
	if err = insertMarks(ctx, tx, assessmentID, marks); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "replacing marks")
}

func (repo *assessmentRepository) UpdateMark(ctx context.Context, assessmentID string, mark assessment.Mark) error {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE marks SET score = $1, comment = $2
		WHERE assessment_id = $3 AND student_id = $4`,
		mark.Score, null.NewString(mark.Comment, mark.Comment != ""), assessmentID, mark.StudentID,
	)
	if err != nil {
		return errors.Wrap(err, "updating mark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrMarkNotFound
	}
	_, err = repo.db.ExecContext(ctx, `UPDATE assessments SET updated_at = now() WHERE id = $1`, assessmentID)
	return errors.Wrap(err, "updating mark")
}

// DeleteAssessment relies on ON DELETE CASCADE to drop the assessment's marks.
func (repo *assessmentRepository) DeleteAssessment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrNotFound
	}
	return nil
}

func insertMarks(ctx context.Context, tx *sqlx.Tx, assessmentID string, marks []assessment.Mark) error {
	for _, m := range marks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO marks (assessment_id, student_id, score, comment)
			VALUES ($1, $2, $3, $4)`,
			assessmentID, m.StudentID, m.Score, null.NewString(m.Comment, m.Comment != ""),
		)
		if err != nil {
			return errors.Wrap(err, "inserting mark")
		}
	}
	return nil
}

func toMarks(rows []markRow) []assessment.Mark {
	marks := make([]assessment.Mark, 0, len(rows))
	for _, r := range rows {
		marks = append(marks, r.toMark())
	}
	return marks
}
