package handlers

import (
	"net/http"
	"strconv"

	"pchat-api/internal/database"
	"pchat-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	messagesPerPage = 20
	maxGroupMembers = 100
	minGroupMembers = 3
)

// NewChatRequest represents the group creation payload
type NewChatRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members" binding:"required,min=2"`
}

// RenameChatRequest represents the rename payload
type RenameChatRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMembersRequest represents the add-members payload. The member cap
// leaves room for the creator plus the two founding members.
type AddMembersRequest struct {
	ChatID  string   `json:"chatId" binding:"required"`
	Members []string `json:"members" binding:"required,min=1,max=97"`
}

// RemoveMemberRequest represents the remove-member payload
type RemoveMemberRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// ChatResponse is a chat with its resolved member summaries
type ChatResponse struct {
	ID        string               `json:"_id"`
	Name      string               `json:"name"`
	GroupChat bool                 `json:"groupChat"`
	Creator   string               `json:"creator"`
	Members   []models.UserSummary `json:"members"`
}

func chatMembers(chatID string) ([]models.UserSummary, error) {
	var members []models.UserSummary
	err := database.GetDB().
		Table("chat_members").
		Select("users.id as id, users.name as name").
		Joins("JOIN users ON users.id = chat_members.user_id").
		Where("chat_members.chat_id = ?", chatID).
		Scan(&members).Error
	return members, err
}

func memberCount(chatID string) int64 {
	var count int64
	database.GetDB().Model(&models.ChatMember{}).
		Where("chat_id = ?", chatID).
		Count(&count)
	return count
}

func isChatMember(chatID, userID string) bool {
	var count int64
	database.GetDB().Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count)
	return count > 0
}

// NewGroupChat creates a group chat with the caller plus the listed members
// POST /api/v1/chat/new
func NewGroupChat(c *gin.Context) {
	userID := c.GetString("user_id")

	var req NewChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name and at least 2 members are required"})
		return
	}

	chat := models.Chat{
		ID:        uuid.NewString(),
		Name:      req.Name,
		GroupChat: true,
		CreatorID: userID,
	}

	// chat row and membership rows land together or not at all
	memberIDs := append([]string{userID}, req.Members...)
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(memberIDs))
		for _, id := range memberIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if err := tx.Create(&models.ChatMember{ChatID: chat.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Group created",
		"chatId":  chat.ID,
	})
}

// GetMyChats lists the chats the caller belongs to
// GET /api/v1/chat/my
func GetMyChats(c *gin.Context) {
	userID := c.GetString("user_id")

	var chats []models.Chat
	err := database.GetDB().
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Find(&chats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	resp := make([]ChatResponse, 0, len(chats))
	for _, chat := range chats {
		members, err := chatMembers(chat.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat members"})
			return
		}
		resp = append(resp, ChatResponse{
			ID:        chat.ID,
			Name:      chat.Name,
			GroupChat: chat.GroupChat,
			Creator:   chat.CreatorID,
			Members:   members,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chats":   resp,
	})
}

// GetMyGroups lists the group chats the caller created
// GET /api/v1/chat/my/groups
func GetMyGroups(c *gin.Context) {
	userID := c.GetString("user_id")

	var chats []models.Chat
	err := database.GetDB().
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ? AND chats.group_chat = ? AND chats.creator_id = ?", userID, true, userID).
		Find(&chats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	resp := make([]ChatResponse, 0, len(chats))
	for _, chat := range chats {
		members, err := chatMembers(chat.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat members"})
			return
		}
		resp = append(resp, ChatResponse{
			ID:        chat.ID,
			Name:      chat.Name,
			GroupChat: chat.GroupChat,
			Creator:   chat.CreatorID,
			Members:   members,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"groups":  resp,
	})
}

// GetChatDetails returns one chat with member summaries
// GET /api/v1/chat/:id
func GetChatDetails(c *gin.Context) {
	chatID := c.Param("id")

	var chat models.Chat
	if err := database.GetDB().First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}

	members, err := chatMembers(chat.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat members"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"chat": ChatResponse{
			ID:        chat.ID,
			Name:      chat.Name,
			GroupChat: chat.GroupChat,
			Creator:   chat.CreatorID,
			Members:   members,
		},
	})
}

// RenameGroup renames a group chat; only the creator may rename
// PUT /api/v1/chat/:id
func RenameGroup(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")

	var req RenameChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New name is required"})
		return
	}

	var chat models.Chat
	if err := database.GetDB().First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if !chat.GroupChat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a group chat"})
		return
	}
	if chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group creator can rename it"})
		return
	}

	if err := database.GetDB().Model(&chat).Update("name", req.Name).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Group renamed",
	})
}

// AddMembers adds users to a group chat; only the creator may add
// PUT /api/v1/chat/addmembers
func AddMembers(c *gin.Context) {
	userID := c.GetString("user_id")

	var req AddMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID and 1-97 members are required"})
		return
	}

	db := database.GetDB()
	var chat models.Chat
	if err := db.First(&chat, "id = ?", req.ChatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if !chat.GroupChat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a group chat"})
		return
	}
	if chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group creator can add members"})
		return
	}

	added := 0
	for _, id := range req.Members {
		if isChatMember(req.ChatID, id) {
			continue
		}
		if memberCount(req.ChatID) >= maxGroupMembers {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Group members limit reached"})
			return
		}
		if err := db.Create(&models.ChatMember{ChatID: req.ChatID, UserID: id}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add members"})
			return
		}
		added++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Members added",
		"added":   added,
	})
}

// RemoveMember removes one user from a group chat; only the creator
// may remove, and a group never shrinks below its minimum size
// PUT /api/v1/chat/removemember
func RemoveMember(c *gin.Context) {
	userID := c.GetString("user_id")

	var req RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID and user ID are required"})
		return
	}

	db := database.GetDB()
	var chat models.Chat
	if err := db.First(&chat, "id = ?", req.ChatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if !chat.GroupChat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a group chat"})
		return
	}
	if chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group creator can remove members"})
		return
	}
	if !isChatMember(req.ChatID, req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this group"})
		return
	}
	if memberCount(req.ChatID) <= minGroupMembers {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group must have at least 3 members"})
		return
	}

	if err := db.Delete(&models.ChatMember{}, "chat_id = ? AND user_id = ?", req.ChatID, req.UserID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member removed",
	})
}

// LeaveGroup removes the caller from a group chat. If the creator
// leaves, ownership passes to another remaining member.
// DELETE /api/v1/chat/leave/:id
func LeaveGroup(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")

	var chat models.Chat
	db := database.GetDB()
	if err := db.First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if !chat.GroupChat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a group chat"})
		return
	}
	if !isChatMember(chatID, userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not a member of this group"})
		return
	}

	if err := db.Delete(&models.ChatMember{}, "chat_id = ? AND user_id = ?", chatID, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave group"})
		return
	}

	if chat.CreatorID == userID {
		var remaining models.ChatMember
		if err := db.Where("chat_id = ?", chatID).First(&remaining).Error; err == nil {
			db.Model(&chat).Update("creator_id", remaining.UserID)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Left the group",
	})
}

// DeleteChat deletes a chat with its memberships and messages. Group
// chats can only be deleted by their creator; a non-group chat by any
// of its members.
// DELETE /api/v1/chat/:id
func DeleteChat(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")

	db := database.GetDB()
	var chat models.Chat
	if err := db.First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	if chat.GroupChat && chat.CreatorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group creator can delete it"})
		return
	}
	if !chat.GroupChat && !isChatMember(chatID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to delete this chat"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "chat_id = ?", chatID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ChatMember{}, "chat_id = ?", chatID).Error; err != nil {
			return err
		}
		return tx.Delete(&chat).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Chat deleted",
	})
}

// GetMessages returns a chat's messages, newest first, paginated
// GET /api/v1/chat/message/:id?page=
func GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	chatID := c.Param("id")
	page := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}

	if !isChatMember(chatID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to access this chat"})
		return
	}

	db := database.GetDB()
	var total int64
	if err := db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	var messages []models.Message
	err := db.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(messagesPerPage).
		Offset((page - 1) * messagesPerPage).
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	totalPages := (total + messagesPerPage - 1) / messagesPerPage

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"messages":   messages,
		"totalPages": totalPages,
	})
}
