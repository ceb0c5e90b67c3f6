package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/alama/core/assessment"
)

type assessmentRepository struct {
	db *assessmentTable
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db.assessment}
}

func (repo *assessmentRepository) CreateAssessment(_ context.Context, asmt assessment.Assessment) (assessment.Assessment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asmt.ID = uuid.New().String()
	asmt.Marks = copyMarks(asmt.Marks)
	repo.db.table[asmt.ID] = &asmt
	repo.db.order = append(repo.db.order, asmt.ID)
	return copyAssessment(&asmt), nil
}

func (repo *assessmentRepository) GetAssessmentByID(_ context.Context, id string) (assessment.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asmt, ok := repo.db.table[id]; ok {
		return copyAssessment(asmt), nil
	}
	return assessment.Assessment{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) QueryAssessmentsByCourse(_ context.Context, courseID string) ([]assessment.Assessment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assessments := make([]assessment.Assessment, 0)
	for _, id := range repo.db.order {
		if asmt, ok := repo.db.table[id]; ok && asmt.CourseID == courseID {
			assessments = append(assessments, copyAssessment(asmt))
		}
	}
	// oldest first; insertion order breaks ties
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].CreatedAt.Before(assessments[j].CreatedAt)
	})
	return assessments, nil
}

func (repo *assessmentRepository) ReplaceMarks(_ context.Context, assessmentID string, marks []assessment.Mark) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	asmt, ok := repo.db.table[assessmentID]
	if !ok {
		return assessment.ErrNotFound
	}
	asmt.Marks = copyMarks(marks)
	asmt.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *assessmentRepository) UpdateMark(_ context.Context, assessmentID string, mark assessment.Mark) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	asmt, ok := repo.db.table[assessmentID]
	if !ok {
		return assessment.ErrNotFound
	}
	for i, m := range asmt.Marks {
		if m.StudentID == mark.StudentID {
			asmt.Marks[i] = mark
			asmt.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return assessment.ErrMarkNotFound
}

func (repo *assessmentRepository) DeleteAssessment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return assessment.ErrNotFound
	}
	delete(repo.db.table, id)
	repo.db.order = remove(repo.db.order, id)
	return nil
}

func copyAssessment(asmt *assessment.Assessment) assessment.Assessment {
	cp := *asmt
	cp.Marks = copyMarks(asmt.Marks)
	return cp
}

func copyMarks(marks []assessment.Mark) []assessment.Mark {
	cp := make([]assessment.Mark, len(marks))
	copy(cp, marks)
	return cp
}
