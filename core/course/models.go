package course

import (
	"time"

	"github.com/trezcool/alama/core"
)

type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	TeacherID string    `json:"teacher"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name  string `json:"name" validate:"required"`
	Level string `json:"level" validate:"required,level"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// EnrollStudent identifies the student to add to a Course.
type EnrollStudent struct {
	StudentID string `json:"studentId" validate:"required"`
}

func (es *EnrollStudent) Validate() error {
	es.StudentID = core.CleanString(es.StudentID)
	return core.Validate.Struct(es)
}
