package repository

import (
	"context"
	"testing"
	"time"

	"piazza/internal/database"
	"piazza/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory SQLite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Email:     username + "@example.com",
		Password:  "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string, topics []string, uploadTime time.Time, expiryMinutes int) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:        userID,
		Title:         title,
		Body:          "body of " + title,
		UploadTime:    uploadTime,
		ExpiryMinutes: expiryMinutes,
		ExpiryTime:    models.ExpiryTimeFor(uploadTime, expiryMinutes),
		Status:        models.StatusList{},
	}
	for _, name := range topics {
		post.Topics = append(post.Topics, models.Topic{Name: name})
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func addInteraction(t *testing.T, db *gorm.DB, postID, userID uint, interactionType models.InteractionType) *models.Interaction {
	t.Helper()

	interaction := &models.Interaction{
		PostID: postID,
		UserID: userID,
		Type:   interactionType,
	}
	require.NoError(t, db.Create(interaction).Error)
	return interaction
}

func testContext() context.Context {
	return context.Background()
}
