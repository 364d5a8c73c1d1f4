package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/go-co-op/gocron"
)

// StartCronJobs schedules the daily token sweep. Cleanup also runs inline on
// token issuance, so this only bounds how long a quiet deployment keeps dead
// rows around.
func StartCronJobs(log *slog.Logger, auth *services.Auth) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(1).Day().Do(func() {
		if err := auth.Clean(context.Background()); err != nil {
			log.Error("token cleanup failed", "error", err)
			return
		}
		log.Info("token cleanup done")
	})
	s.StartAsync()

	return s
}
