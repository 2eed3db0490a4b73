package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StudentRole = "student"
	AdminRole   = "admin"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Roles     []string
	CreatedAt time.Time
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Student struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Qualification string    `json:"qualification"`
	CreatedAt     time.Time `json:"created_at"`
}

type StudentProfileUpdate struct {
	Name          *string
	Phone         *string
	Address       *string
	Qualification *string
}
