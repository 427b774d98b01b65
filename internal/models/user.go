package models

import (
	"gorm.io/gorm"
)

// User represents a registered chat user
type User struct {
	ID       string `json:"_id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Bio      string `json:"bio"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// Summary returns the lightweight id+name shape embedded in message
// envelopes and member listings.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}

// UserSummary is the id+name projection of a user
type UserSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
