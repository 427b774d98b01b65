package handlers

import (
	"context"
	"sync"
	"time"

	"pchat-api/internal/cache"
	"pchat-api/internal/database"
	"pchat-api/internal/models"
	"pchat-api/internal/realtime"

	"github.com/google/uuid"
)

// gormMessageStore is the persistence bridge backing the realtime
// router: it writes the durable message record with its own generated
// id, unrelated to the real-time envelope's id.
type gormMessageStore struct{}

func (gormMessageStore) SaveMessage(ctx context.Context, msg realtime.StoredMessage) error {
	record := models.Message{
		ID:       uuid.NewString(),
		Content:  msg.Content,
		SenderID: msg.SenderID,
		ChatID:   msg.ChatID,
	}
	return database.GetDB().WithContext(ctx).Create(&record).Error
}

var (
	routerOnce sync.Once
	rtRouter   *realtime.Router
)

// Realtime returns the process-wide realtime router, wired to the
// durable message store.
func Realtime() *realtime.Router {
	routerOnce.Do(func() {
		rtRouter = realtime.NewRouter(gormMessageStore{})
	})
	return rtRouter
}

// userCache fronts the user lookup performed on every websocket
// handshake; entries expire quickly so renames propagate.
var userCache = cache.New[string, realtime.User]()

const userCacheTTL = 30 * time.Second

// lookupUser resolves a user id to its identity, via cache then DB.
func lookupUser(userID string) (realtime.User, bool) {
	if user, ok := userCache.Get(userID); ok {
		return user, true
	}

	record, err := findUser(userID)
	if err != nil {
		return realtime.User{}, false
	}
	user := realtime.User{ID: record.ID, Name: record.Name}
	userCache.Set(userID, user, userCacheTTL)
	return user, true
}
