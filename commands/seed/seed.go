// Command seed fills the database with fixture users and questions for
// local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/config"
	"github.com/WadsonGarbes/formaplus-api/internal/entity"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/WadsonGarbes/formaplus-api/internal/storage"
)

func main() {
	numUsers := flag.Int("users", 5, "number of users to create")
	numQuestions := flag.Int("questions", 25, "number of questions to create")
	flag.Parse()

	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	database, err := storage.InitDB(cfg.DB)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	repository := repo.NewRepository(database)
	userService := services.NewUsers(slog.Default(), repository)

	ctx := context.Background()

	users := make([]entity.User, 0, *numUsers)
	for i := 0; i < *numUsers; i++ {
		username := fmt.Sprintf("user%02d", i+1)
		email := username + "@example.com"
		user, err := userService.Register(ctx, username, email, "password", "seeded user")
		if err != nil {
			log.Fatalf("failed to create user %s: %v", username, err)
		}
		users = append(users, user)
	}
	log.Printf("%d users added", len(users))

	for i := 0; i < *numQuestions; i++ {
		author := users[rand.Intn(len(users))]
		question := entity.Question{
			Body:      fmt.Sprintf("Sample question #%d: what is the expected output?", i+1),
			Answer:    fmt.Sprintf("Sample answer #%d.", i+1),
			Timestamp: time.Now().UTC().Add(-time.Duration(rand.Intn(365*24)) * time.Hour),
			UserID:    author.ID,
		}
		if err := repository.SaveQuestion(ctx, &question); err != nil {
			log.Fatalf("failed to create question: %v", err)
		}
	}
	log.Printf("%d questions added", *numQuestions)
}
