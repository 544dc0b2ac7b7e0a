// Package seed provides database seeding utilities for development and
// testing. All seeded users share the password "password123".
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"piazza/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var topicNames = []string{
	"Politics", "Health", "Sport", "Tech",
	"Science", "Music", "Movies", "Food", "Travel",
}

// Seed populates the database with demo users, posts, votes and comments.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := createPosts(db, rng, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createEngagement(db, rng, users, posts); err != nil {
		return fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Println("seeding complete; all users have password \"password123\"")
	return nil
}

func clearData(db *gorm.DB) error {
	// Hard-delete in dependency order
	for _, model := range []any{
		&models.Interaction{}, &models.Comment{}, &models.Topic{},
		&models.Post{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		user := &models.User{
			Username:  fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), i),
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), i, gofakeit.DomainName()),
			Password:  string(hash),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, rng *rand.Rand, users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rng.Intn(len(users))]

		// 1-3 distinct topics per post
		perm := rng.Perm(len(topicNames))
		count := 1 + rng.Intn(3)
		topics := make([]models.Topic, 0, count)
		for _, idx := range perm[:count] {
			topics = append(topics, models.Topic{Name: topicNames[idx]})
		}

		// Spread uploads over the past week; some windows already closed
		uploadTime := time.Now().UTC().Add(-time.Duration(rng.Intn(7*24*60)) * time.Minute)
		expiryMinutes := 30 + rng.Intn(7*24*60)

		post := &models.Post{
			UserID:        author.ID,
			Title:         gofakeit.Sentence(5),
			Body:          gofakeit.Paragraph(1, 3, 8, "\n"),
			Topics:        topics,
			UploadTime:    uploadTime,
			ExpiryMinutes: expiryMinutes,
			ExpiryTime:    models.ExpiryTimeFor(uploadTime, expiryMinutes),
			Status:        models.StatusList{},
		}
		if post.IsExpiredAt(time.Now().UTC()) {
			post.MarkExpired()
		}
		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createEngagement adds votes and comments, honoring the product rules:
// at most one vote per (post, user) and never a vote on your own post.
func createEngagement(db *gorm.DB, rng *rand.Rand, users []*models.User, posts []*models.Post) error {
	votes := 0
	comments := 0

	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID {
				continue
			}
			if rng.Float64() < 0.2 {
				interactionType := models.InteractionLike
				if rng.Float64() < 0.3 {
					interactionType = models.InteractionDislike
				}
				interaction := &models.Interaction{
					PostID: post.ID,
					UserID: user.ID,
					Type:   interactionType,
				}
				if err := db.Create(interaction).Error; err != nil {
					return err
				}
				votes++
			}
			if rng.Float64() < 0.1 {
				comment := &models.Comment{
					PostID: post.ID,
					UserID: user.ID,
					Body:   gofakeit.Sentence(8 + rng.Intn(10)),
				}
				if err := db.Create(comment).Error; err != nil {
					return err
				}
				comments++
			}
		}
	}

	log.Printf("created %d votes and %d comments", votes, comments)
	return nil
}
