package main

import (
	"log"
	"os"

	app2 "github.com/WadsonGarbes/formaplus-api/internal/app"
	"github.com/WadsonGarbes/formaplus-api/internal/config"
)

func main() {
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	app, err := app2.NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if err := app.Run(":" + cfg.HTTP.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
