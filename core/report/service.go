package report

import (
	"context"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/assessment"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/user"
)

type (
	// CourseSummary is a teacher-dashboard line for one course.
	CourseSummary struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		StudentCount    int    `json:"studentCount"`
		AssessmentCount int    `json:"assessmentCount"`
	}

	// LevelSummary groups a teacher's courses of one level.
	LevelSummary struct {
		CourseCount  int             `json:"courseCount"`
		StudentCount int             `json:"studentCount"` // distinct across the level's courses
		Courses      []CourseSummary `json:"courses"`
	}

	// CourseReport is a student-dashboard entry for one enrolled course.
	CourseReport struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Level string `json:"level"`
		Summary
	}

	// CourseInfo identifies a course on the student course-detail payload.
	CourseInfo struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Level string `json:"level"`
	}

	// CourseDetail is a student's full performance view of one course.
	CourseDetail struct {
		Course CourseInfo `json:"course"`
		Summary
	}

	// RosterEntry is one student's summary on a course roster.
	RosterEntry struct {
		Student user.User `json:"student"`
		Average float64   `json:"average"`
		Status  Status    `json:"status"`
		Count   int       `json:"totalAssessments"`
	}

	Service struct {
		crsRepo  course.Repository
		asmtRepo assessment.Repository
		usrRepo  user.Repository
	}
)

func NewService(crsRepo course.Repository, asmtRepo assessment.Repository, usrRepo user.Repository) *Service {
	return &Service{crsRepo: crsRepo, asmtRepo: asmtRepo, usrRepo: usrRepo}
}

// TeacherDashboard summarizes the teacher's courses per level: course count,
// distinct student count across the level's courses, and per-course numbers.
func (svc *Service) TeacherDashboard(ctx context.Context, teacherID string) (map[string]LevelSummary, error) {
	dashboard := make(map[string]LevelSummary, len(core.Levels))

	for _, level := range core.Levels {
		courses, err := svc.crsRepo.QueryCoursesByTeacherAndLevel(ctx, teacherID, level)
		if err != nil {
			return nil, err
		}

		distinct := make(map[string]struct{})
		summaries := make([]CourseSummary, 0, len(courses))
		for _, crs := range courses {
			studentIDs, err := svc.crsRepo.EnrolledStudentIDs(ctx, crs.ID)
			if err != nil {
				return nil, err
			}
			for _, id := range studentIDs {
				distinct[id] = struct{}{}
			}
			assessments, err := svc.asmtRepo.QueryAssessmentsByCourse(ctx, crs.ID)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, CourseSummary{
				ID:              crs.ID,
				Name:            crs.Name,
				StudentCount:    len(studentIDs),
				AssessmentCount: len(assessments),
			})
		}

		dashboard[level] = LevelSummary{
			CourseCount:  len(courses),
			StudentCount: len(distinct),
			Courses:      summaries,
		}
	}
	return dashboard, nil
}

// StudentDashboard reports the student's performance in each enrolled course
// for the given period, in enrollment order.
func (svc *Service) StudentDashboard(ctx context.Context, studentID string, p Period) ([]CourseReport, error) {
	courses, err := svc.crsRepo.QueryCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	reports := make([]CourseReport, 0, len(courses))
	for _, crs := range courses {
		assessments, err := svc.asmtRepo.QueryAssessmentsByCourse(ctx, crs.ID)
		if err != nil {
			return nil, err
		}
		summary, err := CourseAverage(FilterByPeriod(assessments, p), studentID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, CourseReport{
			ID:      crs.ID,
			Name:    crs.Name,
			Level:   crs.Level,
			Summary: summary,
		})
	}
	return reports, nil
}

// StudentCourseDetail reports the student's full (unfiltered) performance
// history in one course.
func (svc *Service) StudentCourseDetail(ctx context.Context, studentID, courseID string) (CourseDetail, error) {
	crs, err := svc.crsRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return CourseDetail{}, err
	}
	enrolled, err := svc.crsRepo.IsEnrolled(ctx, crs.ID, studentID)
	if err != nil {
		return CourseDetail{}, err
	}
	if !enrolled {
		return CourseDetail{}, course.ErrNotEnrolled
	}

	assessments, err := svc.asmtRepo.QueryAssessmentsByCourse(ctx, crs.ID)
	if err != nil {
		return CourseDetail{}, err
	}
	summary, err := CourseAverage(assessments, studentID)
	if err != nil {
		return CourseDetail{}, err
	}

	return CourseDetail{
		Course:  CourseInfo{ID: crs.ID, Name: crs.Name, Level: crs.Level},
		Summary: summary,
	}, nil
}

// CourseRoster summarizes every enrolled student's performance in a course
// owned by the given teacher, in enrollment order.
func (svc *Service) CourseRoster(ctx context.Context, teacherID, courseID string) ([]RosterEntry, error) {
	crs, err := svc.crsRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if crs.TeacherID != teacherID {
		return nil, course.ErrNotOwned
	}

	studentIDs, err := svc.crsRepo.EnrolledStudentIDs(ctx, crs.ID)
	if err != nil {
		return nil, err
	}
	students, err := svc.usrRepo.GetUsersByID(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]user.User, len(students))
	for _, u := range students {
		byID[u.ID] = u
	}

	assessments, err := svc.asmtRepo.QueryAssessmentsByCourse(ctx, crs.ID)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(studentIDs))
	for _, id := range studentIDs {
		std, ok := byID[id]
		if !ok {
			continue
		}
		summary, err := CourseAverage(assessments, id)
		if err != nil {
			return nil, err
		}
		roster = append(roster, RosterEntry{
			Student: std,
			Average: summary.Average,
			Status:  summary.Status,
			Count:   summary.Count,
		})
	}
	return roster, nil
}
