// Package report computes per-student and per-course performance summaries
// from raw assessment and mark data, and assembles the teacher and student
// dashboard payloads on top of them.
package report

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
)

// Status classifies an average score.
type Status string

const (
	StatusPassing Status = "passing" // average >= 70
	StatusAtRisk  Status = "at_risk" // 60 <= average < 70
	StatusFailing Status = "failing" // average < 60
)

var errInvalidMaxMarks = errors.New("assessment maxMarks must be positive")

// StatusOf returns the Status for an average expressed as a percentage.
func StatusOf(average float64) Status {
	switch {
	case average >= 70:
		return StatusPassing
	case average >= 60:
		return StatusAtRisk
	default:
		return StatusFailing
	}
}

// Round2 rounds half-up at the 2nd decimal place.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

type (
	// AssessmentResult is one student's outcome for one assessment.
	AssessmentResult struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Type      string    `json:"type"`
		MaxMarks  float64   `json:"maxMarks"`
		Score     float64   `json:"score"`
		Comment   string    `json:"comment"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Summary is a student's aggregated performance over a set of assessments.
	Summary struct {
		Average float64            `json:"average"`
		Status  Status             `json:"status"`
		Count   int                `json:"totalAssessments"`
		Items   []AssessmentResult `json:"assessments"`
	}
)

// CourseAverage computes a student's performance summary over the given
// assessments (typically one course's, optionally period-filtered upfront).
//
// The average is the weighted percentage sum(score) / sum(maxMarks) * 100,
// rounded half-up to 2 decimals. This single formula is used by every
// endpoint; per-assessment percentage means are deliberately not supported
// as they disagree with the weighted form when maxMarks differ.
//
// Zero matching marks yield {average: 0, status: failing, count: 0}.
func CourseAverage(assessments []assessment.Assessment, studentID string) (Summary, error) {
	var totalScore, totalMax float64
	items := make([]AssessmentResult, 0, len(assessments))

	for _, asmt := range assessments {
		if asmt.MaxMarks <= 0 {
			return Summary{}, core.NewValidationError(
				errInvalidMaxMarks,
				core.FieldError{Field: "maxMarks", Error: errInvalidMaxMarks.Error()},
			)
		}
		mark, ok := findMark(asmt.Marks, studentID)
		if !ok {
			continue
		}
		totalScore += mark.Score
		totalMax += asmt.MaxMarks
		items = append(items, AssessmentResult{
			ID:        asmt.ID,
			Name:      asmt.Name,
			Type:      asmt.Type,
			MaxMarks:  asmt.MaxMarks,
			Score:     mark.Score,
			Comment:   mark.Comment,
			CreatedAt: asmt.CreatedAt,
		})
	}

	var average float64
	if totalMax > 0 {
		average = Round2(totalScore / totalMax * 100)
	}

	// most recent assessment first; ties keep insertion order
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	return Summary{
		Average: average,
		Status:  StatusOf(average),
		Count:   len(items),
		Items:   items,
	}, nil
}

// findMark locates the target student's mark; at most one exists per
// (assessment, student) pair.
func findMark(marks []assessment.Mark, studentID string) (assessment.Mark, bool) {
	for _, m := range marks {
		if m.StudentID == studentID {
			return m, true
		}
	}
	return assessment.Mark{}, false
}
