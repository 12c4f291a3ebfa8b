package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCities = []string{"TYO", "OSA", "NYC", "LON"}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears every table.
//  2. Creates 20 users (password "password") spread over four cities, each
//     with a profile and two confirmed cards.
//  3. Creates one board post per user, alternating global and city scope,
//     and sprinkles ~70% random likes over them.
//
// Card images are not uploaded; storage keys point at objects that do not exist.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(db); err != nil {
		return err
	}
	slog.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	var userIDs, postIDs []string
	for i := 1; i <= 20; i++ {
		city := seedCities[i%len(seedCities)]
		u := User{
			ID:           uuid.NewString(),
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		p := Profile{UserID: u.ID, DisplayName: fmt.Sprintf("User %d", i), CityCode: city}
		if err := db.Omit("User").Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		userIDs = append(userIDs, u.ID)

		for j := 1; j <= 2; j++ {
			id := uuid.NewString()
			c := Card{
				ID:           id,
				OwnerID:      u.ID,
				Title:        fmt.Sprintf("Card %d-%d", i, j),
				StorageKey:   "cards/" + u.ID + "/" + id,
				ContentType:  "image/png",
				SizeBytes:    int64(50_000 + r.Intn(200_000)),
				Status:       "available",
				UploadStatus: "confirmed",
			}
			if err := db.Create(&c).Error; err != nil {
				return fmt.Errorf("failed to seed card: %w", err)
			}
		}

		post := Post{
			ID:        uuid.NewString(),
			OwnerID:   u.ID,
			Scope:     "global",
			Category:  "offering",
			Title:     fmt.Sprintf("Trading doubles from user%d", i),
			Status:    "open",
			ExpiresAt: now.Add(30 * 24 * time.Hour),
		}
		if i%2 == 0 {
			post.Scope = "city"
			post.CityCode = &city
			post.Category = "meetup"
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
		postIDs = append(postIDs, post.ID)
	}
	slog.Info("seeded users, cards and posts", "users", len(userIDs))

	likes := 0
	for _, userID := range userIDs {
		for _, postID := range postIDs {
			if r.Intn(100) >= 70 {
				continue
			}
			err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&PostLike{PostID: postID, UserID: userID}).Error
			if err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
			likes++
		}
	}
	slog.Info("seeded likes", "likes", likes)
	return nil
}

// SeedMinimalTestData clears the database and inserts three users in one city.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearAll(db); err != nil {
		return err
	}

	users := []User{
		{ID: "00000000-0000-0000-0000-000000000001", Username: "user1", Email: "u1@test.com", PasswordHash: "x", Active: true},
		{ID: "00000000-0000-0000-0000-000000000002", Username: "user2", Email: "u2@test.com", PasswordHash: "x", Active: true},
		{ID: "00000000-0000-0000-0000-000000000003", Username: "user3", Email: "u3@test.com", PasswordHash: "x", Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		p := Profile{UserID: u.ID, DisplayName: u.Username, CityCode: "TYO"}
		if err := db.Omit("User").Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}

// clearAll deletes children before parents.
func clearAll(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", models[i], err)
		}
	}
	return nil
}
