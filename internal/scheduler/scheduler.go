package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

// Scheduler periodically fetches live AOD readings for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *aod.Service
	cities    []string
	interval  time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, service *aod.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		cities:    cities,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		log.Println("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running aod fetch job")

		// Cities run sequentially: the geocoder rate limit and the shared
		// download cache make fan-out pointless here.
		for _, city := range s.cities {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := s.service.FetchLive(ctx, city, time.Time{}); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", city, err)
			}
			cancel()
		}
		log.Println("scheduler: completed aod fetch job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
