package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/alama/core/course"
)

var (
	// errors
	ErrNotFound     = errors.New("assessment not found")
	ErrMarkNotFound = errors.New("mark not found for this student")

	errScoreTooHigh     = errors.New("score cannot exceed maxMarks")
	errDuplicateStudent = errors.New("duplicate student in marks")
)

type (
	Repository interface {
		CreateAssessment(ctx context.Context, asmt Assessment) (Assessment, error)
		GetAssessmentByID(ctx context.Context, id string) (Assessment, error)
		// QueryAssessmentsByCourse returns a course's assessments with their
		// marks, oldest first.
		QueryAssessmentsByCourse(ctx context.Context, courseID string) ([]Assessment, error)
		// ReplaceMarks swaps an assessment's marks for the given set.
		ReplaceMarks(ctx context.Context, assessmentID string, marks []Mark) error
		UpdateMark(ctx context.Context, assessmentID string, mark Mark) error
		// DeleteAssessment removes an assessment along with its marks.
		DeleteAssessment(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		crsRepo course.Repository
	}
)

func NewService(repo Repository, crsRepo course.Repository) *Service {
	return &Service{repo: repo, crsRepo: crsRepo}
}

func (svc *Service) Create(ctx context.Context, teacherID string, na NewAssessment) (Assessment, error) {
	if err := svc.checkCourseOwnership(ctx, teacherID, na.CourseID); err != nil {
		return Assessment{}, err
	}

	now := time.Now().UTC()
	asmt := Assessment{
		CourseID:     na.CourseID,
		Name:         na.Name,
		Type:         na.Type,
		MaxMarks:     na.MaxMarks,
		AcademicYear: na.AcademicYear,
		Term:         na.Term,
		Marks:        newMarks(na.Marks),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateAssessment(ctx, asmt)
}

func (svc *Service) QueryByCourse(ctx context.Context, teacherID, courseID string) ([]Assessment, error) {
	if err := svc.checkCourseOwnership(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssessmentsByCourse(ctx, courseID)
}

// GetOwned fetches an assessment and checks that its course belongs to the
// given teacher.
func (svc *Service) GetOwned(ctx context.Context, teacherID, assessmentID string) (Assessment, error) {
	asmt, err := svc.repo.GetAssessmentByID(ctx, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	if err := svc.checkCourseOwnership(ctx, teacherID, asmt.CourseID); err != nil {
		return Assessment{}, err
	}
	return asmt, nil
}

// SetMarks fully replaces the assessment's marks; the previous set is
// discarded, not merged.
func (svc *Service) SetMarks(ctx context.Context, teacherID, assessmentID string, sm SetMarks) (Assessment, error) {
	asmt, err := svc.GetOwned(ctx, teacherID, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	if err := sm.Validate(asmt.MaxMarks); err != nil {
		return Assessment{}, err
	}
	if err := svc.repo.ReplaceMarks(ctx, asmt.ID, newMarks(sm.Marks)); err != nil {
		return Assessment{}, err
	}
	return svc.repo.GetAssessmentByID(ctx, asmt.ID)
}

func (svc *Service) UpdateMark(ctx context.Context, teacherID, assessmentID, studentID string, um UpdateMark) error {
	asmt, err := svc.GetOwned(ctx, teacherID, assessmentID)
	if err != nil {
		return err
	}
	if err := um.Validate(asmt.MaxMarks); err != nil {
		return err
	}
	mark := Mark{StudentID: studentID, Score: *um.Score, Comment: um.Comment}
	return svc.repo.UpdateMark(ctx, asmt.ID, mark)
}

func (svc *Service) Delete(ctx context.Context, teacherID, assessmentID string) error {
	asmt, err := svc.GetOwned(ctx, teacherID, assessmentID)
	if err != nil {
		return err
	}
	return svc.repo.DeleteAssessment(ctx, asmt.ID)
}

func (svc *Service) checkCourseOwnership(ctx context.Context, teacherID, courseID string) error {
	crs, err := svc.crsRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if crs.TeacherID != teacherID {
		return course.ErrNotOwned
	}
	return nil
}

func newMarks(nms []NewMark) []Mark {
	marks := make([]Mark, 0, len(nms))
	for _, nm := range nms {
		marks = append(marks, Mark{StudentID: nm.StudentID, Score: nm.Score, Comment: nm.Comment})
	}
	return marks
}
