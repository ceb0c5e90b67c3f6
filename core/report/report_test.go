package report

import (
	"testing"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
)

func asmt(id string, maxMarks float64, createdAt time.Time, marks ...assessment.Mark) assessment.Assessment {
	return assessment.Assessment{
		ID:           id,
		CourseID:     "crs1",
		Name:         id,
		Type:         assessment.TypeFormative,
		MaxMarks:     maxMarks,
		AcademicYear: "2025-2026",
		Term:         core.Term1,
		Marks:        marks,
		CreatedAt:    createdAt,
	}
}

func mark(studentID string, score float64) assessment.Mark {
	return assessment.Mark{StudentID: studentID, Score: score}
}

func TestCourseAverage(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name        string
		assessments []assessment.Assessment
		studentID   string
		wantAvg     float64
		wantStatus  Status
		wantCount   int
	}{
		{
			name:       "no assessments",
			studentID:  "s1",
			wantAvg:    0,
			wantStatus: StatusFailing,
		},
		{
			name: "no marks for student",
			assessments: []assessment.Assessment{
				asmt("a1", 50, now, mark("s2", 40)),
			},
			studentID:  "s1",
			wantAvg:    0,
			wantStatus: StatusFailing,
		},
		{
			name: "weighted average at risk",
			assessments: []assessment.Assessment{
				asmt("a1", 50, now, mark("s1", 40)),            // 80%
				asmt("a2", 100, now.Add(time.Minute), mark("s1", 60)), // 60%
			},
			studentID:  "s1",
			wantAvg:    66.67, // 100/150, not the 70 an unweighted mean would give
			wantStatus: StatusAtRisk,
			wantCount:  2,
		},
		{
			name: "passing boundary",
			assessments: []assessment.Assessment{
				asmt("a1", 100, now, mark("s1", 70)),
			},
			studentID:  "s1",
			wantAvg:    70,
			wantStatus: StatusPassing,
			wantCount:  1,
		},
		{
			name: "at risk boundary",
			assessments: []assessment.Assessment{
				asmt("a1", 100, now, mark("s1", 60)),
			},
			studentID:  "s1",
			wantAvg:    60,
			wantStatus: StatusAtRisk,
			wantCount:  1,
		},
		{
			name: "just below at risk",
			assessments: []assessment.Assessment{
				asmt("a1", 10000, now, mark("s1", 5999)),
			},
			studentID:  "s1",
			wantAvg:    59.99,
			wantStatus: StatusFailing,
			wantCount:  1,
		},
		{
			name: "rounds half up",
			assessments: []assessment.Assessment{
				asmt("a1", 80, now, mark("s1", 50)), // 62.5%
			},
			studentID:  "s1",
			wantAvg:    62.5,
			wantStatus: StatusAtRisk,
			wantCount:  1,
		},
		{
			name: "perfect score",
			assessments: []assessment.Assessment{
				asmt("a1", 20, now, mark("s1", 20)),
				asmt("a2", 50, now, mark("s1", 50)),
			},
			studentID:  "s1",
			wantAvg:    100,
			wantStatus: StatusPassing,
			wantCount:  2,
		},
		{
			name: "zero scores",
			assessments: []assessment.Assessment{
				asmt("a1", 20, now, mark("s1", 0)),
			},
			studentID:  "s1",
			wantAvg:    0,
			wantStatus: StatusFailing,
			wantCount:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CourseAverage(tt.assessments, tt.studentID)
			if err != nil {
				t.Fatalf("CourseAverage() error = %v", err)
			}
			if got.Average != tt.wantAvg {
				t.Errorf("Average = %v; want %v", got.Average, tt.wantAvg)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %v; want %v", got.Status, tt.wantStatus)
			}
			if got.Count != tt.wantCount {
				t.Errorf("Count = %v; want %v", got.Count, tt.wantCount)
			}
			if got.Average < 0 || got.Average > 100 {
				t.Errorf("Average = %v; out of [0, 100]", got.Average)
			}
			if got.Items == nil {
				t.Error("Items is nil; want empty slice")
			}
		})
	}

	t.Run("invalid maxMarks", func(t *testing.T) {
		_, err := CourseAverage([]assessment.Assessment{asmt("a1", 0, now, mark("s1", 0))}, "s1")
		if err == nil {
			t.Fatal("CourseAverage() expected error on maxMarks <= 0")
		}
		if _, ok := err.(*core.ValidationError); !ok {
			t.Errorf("error = %T; want *core.ValidationError", err)
		}
	})

	t.Run("items most recent first", func(t *testing.T) {
		got, err := CourseAverage([]assessment.Assessment{
			asmt("old", 10, now, mark("s1", 5)),
			asmt("new", 10, now.Add(time.Hour), mark("s1", 5)),
		}, "s1")
		if err != nil {
			t.Fatalf("CourseAverage() error = %v", err)
		}
		if got.Items[0].ID != "new" || got.Items[1].ID != "old" {
			t.Errorf("Items order = [%s, %s]; want [new, old]", got.Items[0].ID, got.Items[1].ID)
		}
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		avg  float64
		want Status
	}{
		{100, StatusPassing},
		{70.01, StatusPassing},
		{70, StatusPassing},
		{69.99, StatusAtRisk},
		{60, StatusAtRisk},
		{59.99, StatusFailing},
		{0, StatusFailing},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.avg); got != tt.want {
			t.Errorf("StatusOf(%v) = %v; want %v", tt.avg, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{66.666666, 66.67},
		{66.664, 66.66},
		{0.125, 0.13}, // half rounds up
		{0, 0},
		{100, 100},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
