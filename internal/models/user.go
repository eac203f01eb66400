package models

import (
	"time"
)

type AdminRole string

const (
	RoleAdmin AdminRole = "ADMIN"
	RoleUser  AdminRole = "USER"
)

func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type Admin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserName     string    `json:"userName" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string    `json:"-" gorm:"not null;size:255"`
	Role         AdminRole `json:"role" gorm:"not null;size:20"`
	RefreshToken *string   `json:"-" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Admin) TableName() string {
	return "admins"
}
