package report

import (
	"fmt"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
)

// Period is an academic year + term pair used to filter assessments.
// The zero Period matches everything.
type Period struct {
	AcademicYear string
	Term         string
}

func (p Period) IsZero() bool { return p.AcademicYear == "" && p.Term == "" }

// FilterByPeriod keeps the assessments recorded in the given period.
func FilterByPeriod(assessments []assessment.Assessment, p Period) []assessment.Assessment {
	if p.IsZero() {
		return assessments
	}
	filtered := make([]assessment.Assessment, 0, len(assessments))
	for _, asmt := range assessments {
		if asmt.AcademicYear == p.AcademicYear && asmt.Term == p.Term {
			filtered = append(filtered, asmt)
		}
	}
	return filtered
}

// AcademicInfo describes the current academic period and the selectable ones.
type AcademicInfo struct {
	CurrentAcademicYear string   `json:"currentAcademicYear"`
	CurrentTerm         string   `json:"currentTerm"`
	AcademicYears       []string `json:"academicYears"`
	Terms               []string `json:"terms"`
}

// CurrentAcademicInfo derives the academic year and term from a point in
// time. The academic year starts in September; terms run Sep-Dec, Jan-Mar
// and Apr-Jul, with August folded into the 1st Term.
func CurrentAcademicInfo(t time.Time) AcademicInfo {
	year := t.Year()
	month := int(t.Month())

	var academicYear string
	if month >= 9 {
		academicYear = formatAcademicYear(year)
	} else {
		academicYear = formatAcademicYear(year - 1)
	}

	var term string
	switch {
	case month >= 9 && month <= 12:
		term = core.Term1
	case month >= 1 && month <= 3:
		term = core.Term2
	case month >= 4 && month <= 7:
		term = core.Term3
	default: // August
		term = core.Term1
	}

	return AcademicInfo{
		CurrentAcademicYear: academicYear,
		CurrentTerm:         term,
		AcademicYears: []string{
			formatAcademicYear(year - 1),
			formatAcademicYear(year),
			formatAcademicYear(year + 1),
		},
		Terms: core.Terms,
	}
}

func formatAcademicYear(startYear int) string {
	return fmt.Sprintf("%d-%d", startYear, startYear+1)
}
