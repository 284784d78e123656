package model

import "time"

// Student represents a verified student account with the profile used to
// match scholarships. A row is only created once the email has been proven
// via the verification code; there is no update or delete path.
type Student struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	Gender           string    `json:"gender" gorm:"size:32"`
	DOB              string    `json:"dob" gorm:"size:32"`
	TotalIncome      string    `json:"total_income" gorm:"size:64"`
	Caste            string    `json:"caste" gorm:"size:64"`
	FatherOccupation string    `json:"father_occupation" gorm:"size:255"`
	MotherOccupation string    `json:"mother_occupation" gorm:"size:255"`
	Email            string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (Student) TableName() string {
	return "students"
}
