package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post is a single admin-managed post. Title and description carry unique
// constraints enforced both by the handlers and the database schema. Image
// holds the storage key of the attached asset, if any.
type Post struct {
	ID          uint           `json:"id" db:"id" gorm:"primaryKey"`
	Title       string         `json:"post_title" db:"post_title" gorm:"column:post_title;type:varchar(255);not null;unique"`
	Description string         `json:"post_description" db:"post_description" gorm:"column:post_description;type:text;not null;unique"`
	Status      bool           `json:"post_status" db:"post_status" gorm:"column:post_status;not null;default:false"`
	Image       *string        `json:"image,omitempty" db:"image" gorm:"type:text"`
	Date        datatypes.Date `json:"date" db:"date" gorm:"type:date"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// StatusText returns the two-state wire form ("active"/"inactive") used by
// the grid badge and the status-update endpoint.
func (p Post) StatusText() string {
	if p.Status {
		return "active"
	}
	return "inactive"
}
