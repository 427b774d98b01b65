package handlers

import (
	"net/http"

	"pchat-api/internal/auth"
	"pchat-api/internal/database"
	"pchat-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Bio      string `json:"bio"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// sendToken issues a JWT for the user, sets it as the session cookie
// and writes the response body.
func sendToken(c *gin.Context, user models.User, status int, message string) {
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.SetCookie(auth.CookieName, token, 24*3600, "/", "", false, true)
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"user":    user.Summary(),
		"token":   token,
	})
}

// Register creates a new user and logs them in
// POST /api/v1/user/new
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, username and password are required"})
		return
	}

	var existing models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is taken, please try another username"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Username: req.Username,
		Password: string(hash),
		Bio:      req.Bio,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	sendToken(c, user, http.StatusCreated, "User created successfully")
}

// Login verifies credentials and issues a session cookie
// POST /api/v1/user/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid username or password"})
		return
	}

	sendToken(c, user, http.StatusOK, "Welcome back, "+user.Name)
}

// Logout clears the session cookie
// GET /api/v1/user/logout
func Logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// GetMyProfile returns the authenticated user's profile
// GET /api/v1/user/me
func GetMyProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// SearchUser finds users by name substring, excluding the caller
// GET /api/v1/user/search?name=
func SearchUser(c *gin.Context) {
	userID := c.GetString("user_id")
	name := c.Query("name")

	var users []models.User
	query := database.GetDB().Where("id <> ?", userID)
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	results := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, u.Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   results,
	})
}

// findUser loads a user by id.
func findUser(userID string) (models.User, error) {
	var user models.User
	err := database.GetDB().First(&user, "id = ?", userID).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
