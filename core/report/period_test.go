package report

import (
	"testing"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
)

func TestFilterByPeriod(t *testing.T) {
	now := time.Now().UTC()
	a1 := asmt("a1", 10, now)
	a1.AcademicYear, a1.Term = "2025-2026", core.Term1
	a2 := asmt("a2", 10, now)
	a2.AcademicYear, a2.Term = "2025-2026", core.Term2
	a3 := asmt("a3", 10, now)
	a3.AcademicYear, a3.Term = "2024-2025", core.Term1
	all := []assessment.Assessment{a1, a2, a3}

	tests := []struct {
		name    string
		period  Period
		wantIDs []string
	}{
		{name: "zero period matches all", wantIDs: []string{"a1", "a2", "a3"}},
		{name: "year and term", period: Period{AcademicYear: "2025-2026", Term: core.Term1}, wantIDs: []string{"a1"}},
		{name: "other term", period: Period{AcademicYear: "2025-2026", Term: core.Term2}, wantIDs: []string{"a2"}},
		{name: "no match", period: Period{AcademicYear: "2030-2031", Term: core.Term1}, wantIDs: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPeriod(all, tt.period)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d; want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %s; want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCurrentAcademicInfo(t *testing.T) {
	tests := []struct {
		name      string
		t         time.Time
		wantYear  string
		wantTerm  string
		wantYears []string
	}{
		{
			name: "september starts the year", t: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term1,
			wantYears: []string{"2024-2025", "2025-2026", "2026-2027"},
		},
		{
			name: "december", t: time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term1,
			wantYears: []string{"2024-2025", "2025-2026", "2026-2027"},
		},
		{
			name: "january is second term of previous start year", t: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term2,
			wantYears: []string{"2025-2026", "2026-2027", "2027-2028"},
		},
		{
			name: "march", t: time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term2,
			wantYears: []string{"2025-2026", "2026-2027", "2027-2028"},
		},
		{
			name: "april starts third term", t: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term3,
			wantYears: []string{"2025-2026", "2026-2027", "2027-2028"},
		},
		{
			name: "august folds into first term", t: time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
			wantYear: "2025-2026", wantTerm: core.Term1,
			wantYears: []string{"2025-2026", "2026-2027", "2027-2028"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentAcademicInfo(tt.t)
			if got.CurrentAcademicYear != tt.wantYear {
				t.Errorf("CurrentAcademicYear = %s; want %s", got.CurrentAcademicYear, tt.wantYear)
			}
			if got.CurrentTerm != tt.wantTerm {
				t.Errorf("CurrentTerm = %s; want %s", got.CurrentTerm, tt.wantTerm)
			}
			if len(got.AcademicYears) != len(tt.wantYears) {
				t.Fatalf("AcademicYears = %v; want %v", got.AcademicYears, tt.wantYears)
			}
			for i, y := range tt.wantYears {
				if got.AcademicYears[i] != y {
					t.Errorf("AcademicYears[%d] = %s; want %s", i, got.AcademicYears[i], y)
				}
			}
			if len(got.Terms) != len(core.Terms) {
				t.Errorf("Terms = %v; want %v", got.Terms, core.Terms)
			}
		})
	}
}
