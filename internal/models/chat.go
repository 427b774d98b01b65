package models

import (
	"gorm.io/gorm"
)

// Chat represents a conversation between two or more users
type Chat struct {
	ID        string `json:"_id" gorm:"primaryKey"`
	Name      string `json:"name"`
	GroupChat bool   `json:"groupChat" gorm:"column:group_chat"`
	CreatorID string `json:"creator" gorm:"column:creator_id"`
	gorm.Model
}

// TableName specifies the table name for Chat Model
func (Chat) TableName() string {
	return "chats"
}

// ChatMember is a membership row linking a user to a chat
type ChatMember struct {
	ChatID string `json:"chatId" gorm:"column:chat_id;primaryKey"`
	UserID string `json:"userId" gorm:"column:user_id;primaryKey;index"`
}

// TableName specifies the table name for ChatMember Model
func (ChatMember) TableName() string {
	return "chat_members"
}
