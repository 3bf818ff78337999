package model

import (
	"time"
)

type User struct {
	ID        int64     `json:"user_id"`
	Username  string    `json:"username" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email,max=255"`
	FirstName *string   `json:"first_name" validate:"omitnil,max=50"`
	LastName  *string   `json:"last_name" validate:"omitnil,max=50"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPublic is the subset of a user embedded in other views.
type UserPublic struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
}
