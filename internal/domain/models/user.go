package models

import (
	"time"

	"devcamper/internal/domain"
)

type User struct {
	ID                  int64       `json:"id"`
	Name                string      `json:"name" binding:"required"`
	Email               string      `json:"email" binding:"required,email"`
	Role                domain.Role `json:"role"`
	PasswordHash        string      `json:"-"` // never sent to clients
	ResetPasswordToken  string      `json:"-"`
	ResetPasswordExpire *time.Time  `json:"-"`
	CreatedAt           time.Time   `json:"createdAt"`
}

func (u User) Identity() domain.Identity {
	return domain.Identity{ID: u.ID, Role: u.Role}
}

// ClearReset drops any pending password reset.
func (u *User) ClearReset() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}
