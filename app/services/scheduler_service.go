package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// AnalysisScheduler runs the batch pipeline once a day at a configured
// local time
type AnalysisScheduler struct {
	pipeline *PipelineService
	runTime  string
	ticker   *time.Ticker
	stopChan chan bool
	running  bool
}

// NewAnalysisScheduler creates a new analysis scheduler
func NewAnalysisScheduler(pipeline *PipelineService, runTime string) *AnalysisScheduler {
	return &AnalysisScheduler{
		pipeline: pipeline,
		runTime:  runTime,
		stopChan: make(chan bool, 1),
	}
}

// Start begins the scheduler
func (s *AnalysisScheduler) Start() error {
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.running = true
	go s.run()

	log.Printf("Analysis scheduler started, daily run at %s", s.runTime)
	return nil
}

// Stop stops the scheduler
func (s *AnalysisScheduler) Stop() {
	if !s.running {
		return
	}

	// Non-blocking: the run goroutine may be inside a batch run and only
	// reads the channel between runs. The buffered value is picked up at
	// the next select, so Stop never waits out a batch.
	select {
	case s.stopChan <- true:
	default:
	}
	s.running = false

	if s.ticker != nil {
		s.ticker.Stop()
	}

	log.Println("Analysis scheduler stopped")
}

// run is the main scheduler loop
func (s *AnalysisScheduler) run() {
	for {
		duration := s.timeUntilNextRun()
		log.Printf("Next batch analysis scheduled in %v", duration)

		s.ticker = time.NewTicker(duration)

		select {
		case <-s.ticker.C:
			s.ticker.Stop()
			log.Println("Starting scheduled batch analysis...")
			if _, err := s.pipeline.RunBatch(context.Background()); err != nil {
				log.Printf("Scheduled batch analysis failed: %v", err)
			} else {
				log.Println("Scheduled batch analysis completed")
			}

		case <-s.stopChan:
			log.Println("Scheduler stop signal received")
			if s.ticker != nil {
				s.ticker.Stop()
			}
			return
		}
	}
}

// timeUntilNextRun calculates the duration until the configured daily time
func (s *AnalysisScheduler) timeUntilNextRun() time.Duration {
	now := time.Now()

	targetTime, err := time.Parse("15:04", s.runTime)
	if err != nil {
		log.Printf("Invalid run time format: %s, using 02:00", s.runTime)
		targetTime, _ = time.Parse("15:04", "02:00")
	}

	target := time.Date(
		now.Year(),
		now.Month(),
		now.Day(),
		targetTime.Hour(),
		targetTime.Minute(),
		0, 0,
		now.Location(),
	)

	if now.After(target) {
		target = target.Add(24 * time.Hour)
	}

	return target.Sub(now)
}
