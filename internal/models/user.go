package models

import "time"

// User mirrors an identity-provider account. Rows are written only by the
// webhook sync, keyed by the provider's user id.
type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:255" json:"user_id"`
	Email     *string   `gorm:"size:255;uniqueIndex" json:"email"`
	FirstName *string   `gorm:"size:255" json:"first_name"`
	LastName  *string   `gorm:"size:255" json:"last_name"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
