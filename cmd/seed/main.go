// Package main provides a tool to seed the database with test reading data.
//
// It creates a few test users, friends them together, and backfills
// randomized reading logs so stats and leaderboard features have data
// to show during development.
//
// Usage:
//
//	DB_PATH=~/PageTurn/data/db go run ./cmd/seed
//	DB_PATH=~/PageTurn/data/db go run ./cmd/seed --days 120
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

var days = flag.Int("days", 60, "How many days of history to generate")

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/PageTurn/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := createTestUsers(ctx, s)
	befriendAll(ctx, s, users)

	for _, u := range users {
		n := seedLogs(ctx, s, u, *days)
		fmt.Printf("Seeded %d logs for %s\n", n, u.Email)
	}

	fmt.Println("Done.")
}

func createTestUsers(ctx context.Context, s *store.Store) []*domain.User {
	specs := []struct {
		email    string
		name     string
		timezone string
	}{
		{"alice@example.com", "Alice", "America/New_York"},
		{"bob@example.com", "Bob", "Europe/Paris"},
		{"carol@example.com", "Carol", "Asia/Tokyo"},
	}

	var users []*domain.User
	for _, spec := range specs {
		if existing, err := s.GetUserByEmail(ctx, spec.email); err == nil {
			users = append(users, existing)
			continue
		}

		u := &domain.User{
			Email:       spec.email,
			DisplayName: spec.name,
			Role:        domain.RoleMember,
			Timezone:    spec.timezone,
			LastSeenAt:  time.Now().UTC(),
		}
		u.ID = id.MustGenerate("usr")
		u.InitTimestamps()

		if err := s.CreateUser(ctx, u); err != nil {
			log.Fatalf("Failed to create user %s: %v", spec.email, err)
		}
		users = append(users, u)
	}
	return users
}

func befriendAll(ctx context.Context, s *store.Store, users []*domain.User) {
	now := time.Now().UTC()
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			f := &domain.Friendship{
				ID:          id.MustGenerate("frnd"),
				RequesterID: users[i].ID,
				AddresseeID: users[j].ID,
				Status:      domain.FriendshipAccepted,
				CreatedAt:   now,
				AcceptedAt:  &now,
			}
			// Ignore duplicates on reruns.
			_ = s.CreateFriendship(ctx, f)
		}
	}
}

func seedLogs(ctx context.Context, s *store.Store, u *domain.User, days int) int {
	created := 0
	now := time.Now()

	for d := range days {
		// Roughly 70% of days have reading activity.
		if rand.Float64() > 0.7 {
			continue
		}

		sessions := 1 + rand.Intn(3)
		for range sessions {
			loggedAt := now.AddDate(0, 0, -d).
				Add(-time.Duration(rand.Intn(12)) * time.Hour)

			l := domain.NewReadingLog(
				id.MustGenerate("rlog"),
				u.ID,
				"",
				5+rand.Intn(60),
				loggedAt,
			)
			if err := s.CreateReadingLog(ctx, l); err != nil {
				log.Fatalf("Failed to create log: %v", err)
			}
			created++
		}
	}
	return created
}
