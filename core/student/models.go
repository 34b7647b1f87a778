package student

import (
	"io"

	"github.com/trezcool/edutrack/core"
)

// Editable fields
const (
	FieldName       = "name"
	FieldAttendance = "attendance"
	FieldRemarks    = "remarks"

	FieldSubject = "subject"
	FieldGrade   = "grade"
)

// SubjectGrade is one subject/grade pair, identified by its position in Student.Subjects.
type SubjectGrade struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

// Student is the academic record a teacher maintains and the linked parent views.
type Student struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Attendance     string         `json:"attendance"`
	Remarks        string         `json:"remarks"`
	Subjects       []SubjectGrade `json:"subjects"`
	ParentUsername string         `json:"parentUsername"`
	Photo          *string        `json:"photo"` // data URL
}

func (s Student) HasPhoto() bool {
	return s.Photo != nil && *s.Photo != ""
}

func (s Student) clone() Student {
	c := s
	if s.Subjects != nil {
		c.Subjects = make([]SubjectGrade, len(s.Subjects))
		copy(c.Subjects, s.Subjects)
	}
	if s.Photo != nil {
		photo := *s.Photo
		c.Photo = &photo
	}
	return c
}

// NewStudent contains information needed to create a new Student and its parent account.
type NewStudent struct {
	Name           string
	Attendance     string
	Remarks        string
	Subjects       []SubjectGrade
	ParentUsername string
	ParentPassword string

	// Photo is read to the end and stored as a data URL; nil means no photo.
	Photo io.Reader
}

func (ns *NewStudent) clean() {
	core.CleanStrings(&ns.Name, &ns.ParentUsername, &ns.ParentPassword)
}

type fieldUpdate struct {
	Field string `json:"field" validate:"required,oneof=name attendance remarks"`
}

type subjectFieldUpdate struct {
	Field string `json:"field" validate:"required,oneof=subject grade"`
}

func validateField(upd interface{}) error {
	if err := core.Validate.Struct(upd); err != nil {
		return core.TranslateValidationErrors(err, ErrUnknownField)
	}
	return nil
}
