package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. The password column always holds a bcrypt
// hash, never plaintext.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"user_id"`
	FirstName string    `gorm:"size:30" json:"first_name"`
	LastName  string    `gorm:"size:30" json:"last_name"`
	Username  string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:150;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	CreatedAt time.Time `json:"date_added"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
