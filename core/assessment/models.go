package assessment

import (
	"time"

	"github.com/trezcool/alama/core"
)

// Assessment types
const (
	TypeFormative = "Formative"
	TypeSummative = "Summative"
)

var AllTypes = []string{TypeFormative, TypeSummative}

type (
	// Mark is one student's score and comment for one Assessment.
	// At most one Mark exists per (assessment, student) pair; the store
	// enforces this.
	Mark struct {
		StudentID string  `json:"studentId"`
		Score     float64 `json:"score"`
		Comment   string  `json:"comment"`
	}

	Assessment struct {
		ID           string    `json:"id"`
		CourseID     string    `json:"course"`
		Name         string    `json:"name"`
		Type         string    `json:"type"`
		MaxMarks     float64   `json:"maxMarks"`
		AcademicYear string    `json:"academicYear"`
		Term         string    `json:"term"`
		Marks        []Mark    `json:"marks"`
		CreatedAt    time.Time `json:"createdAt"` // UTC
		UpdatedAt    time.Time `json:"updatedAt"` // UTC
	}
)

// NewMark is a mark entry submitted on assessment creation or full replace.
type NewMark struct {
	StudentID string  `json:"studentId" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0"`
	Comment   string  `json:"comment"`
}

// NewAssessment contains information needed to create a new Assessment.
type NewAssessment struct {
	Name         string    `json:"name" validate:"required"`
	Type         string    `json:"type" validate:"required,assessmenttype"`
	CourseID     string    `json:"courseId" validate:"required"`
	MaxMarks     float64   `json:"maxMarks" validate:"required,gt=0"`
	AcademicYear string    `json:"academicYear" validate:"required"`
	Term         string    `json:"term" validate:"required,term"`
	Marks        []NewMark `json:"marks" validate:"omitempty,dive"`
}

func (na *NewAssessment) Validate() error {
	na.Name = core.CleanString(na.Name)
	na.AcademicYear = core.CleanString(na.AcademicYear)
	for i := range na.Marks {
		na.Marks[i].Comment = core.CleanString(na.Marks[i].Comment)
	}
	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return validateMarks(na.Marks, na.MaxMarks)
}

// SetMarks fully replaces an Assessment's marks; an empty list clears them.
type SetMarks struct {
	Marks []NewMark `json:"marks" validate:"omitempty,dive"`
}

func (sm *SetMarks) Validate(maxMarks float64) error {
	for i := range sm.Marks {
		sm.Marks[i].Comment = core.CleanString(sm.Marks[i].Comment)
	}
	if err := core.Validate.Struct(sm); err != nil {
		return err
	}
	return validateMarks(sm.Marks, maxMarks)
}

// UpdateMark modifies a single student's mark.
type UpdateMark struct {
	Score   *float64 `json:"score" validate:"required,gte=0"`
	Comment string   `json:"comment"`
}

func (um *UpdateMark) Validate(maxMarks float64) error {
	um.Comment = core.CleanString(um.Comment)
	if err := core.Validate.Struct(um); err != nil {
		return err
	}
	if *um.Score > maxMarks {
		return core.NewValidationError(errScoreTooHigh, core.FieldError{Field: "score", Error: errScoreTooHigh.Error()})
	}
	return nil
}

// validateMarks enforces the [0, maxMarks] score bound on every entry and
// rejects duplicate students.
func validateMarks(marks []NewMark, maxMarks float64) error {
	seen := make(map[string]struct{}, len(marks))
	for _, m := range marks {
		if m.Score > maxMarks {
			return core.NewValidationError(errScoreTooHigh, core.FieldError{Field: "marks", Error: errScoreTooHigh.Error()})
		}
		if _, ok := seen[m.StudentID]; ok {
			return core.NewValidationError(errDuplicateStudent, core.FieldError{Field: "marks", Error: errDuplicateStudent.Error()})
		}
		seen[m.StudentID] = struct{}{}
	}
	return nil
}
