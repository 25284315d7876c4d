package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler periodically warms the time memo for configured cities so
// interactive requests for popular places answer from cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warm      func(ctx context.Context, city string) error
	cities    []string
	interval  time.Duration
}

// New creates a new Scheduler. warm is called per city on every tick.
func New(cities []string, interval time.Duration, warm func(ctx context.Context, city string) error) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		warm:      warm,
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
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: warming time cache")

		var wg sync.WaitGroup
		for _, city := range s.cities {
			city := city
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := s.warm(ctx, city); err != nil {
					log.Printf("scheduler: warm failed for %s: %v", city, err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: time cache warm completed")
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
