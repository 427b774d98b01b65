package models

import (
	"gorm.io/gorm"
)

// Message is the durable record of a chat message. Its ID is generated
// at persistence time and is unrelated to the id of the real-time
// envelope that already went out for the same message.
type Message struct {
	ID       string `json:"_id" gorm:"primaryKey"`
	Content  string `json:"content" gorm:"not null"`
	SenderID string `json:"sender" gorm:"column:sender_id;index"`
	ChatID   string `json:"chat" gorm:"column:chat_id;index"`
	gorm.Model
}

// TableName specifies the table name for Message Model
func (Message) TableName() string {
	return "messages"
}
