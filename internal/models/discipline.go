package models

import (
	"time"
)

// Discipline is a taught subject that receives at most one scheduled exam per
// session. Teachers are linked through the discipline_teachers join table.
type Discipline struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	Name           string  `json:"name" gorm:"uniqueIndex;not null;size:255"`
	YearOfStudy    *int    `json:"year_of_study"`
	Specialization *string `json:"specialization" gorm:"size:100"`

	Teachers []User `json:"teachers,omitempty" gorm:"many2many:discipline_teachers;joinForeignKey:DisciplineID;joinReferences:TeacherID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Discipline) TableName() string {
	return "disciplines"
}

// DisciplineTeacher is the assignment join row. The composite primary key
// keeps an assignment unique per (discipline, teacher) pair.
type DisciplineTeacher struct {
	DisciplineID uint   `json:"discipline_id" gorm:"primaryKey"`
	TeacherID    string `json:"teacher_id" gorm:"primaryKey;size:255"`
}

func (DisciplineTeacher) TableName() string {
	return "discipline_teachers"
}
