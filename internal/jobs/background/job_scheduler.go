package background

import (
	"context"
	"sync"
	"time"

	"innkeeper/internal/services"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// JobScheduler runs the periodic maintenance sweeps: marking silent IoT
// devices stale and completing bookings whose stay has ended.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	iotSvc     services.IoTService
	bookingSvc services.BookingService
	logger     *zap.Logger
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(iotSvc services.IoTService, bookingSvc services.BookingService, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		iotSvc:     iotSvc,
		bookingSvc: bookingSvc,
		logger:     logger,
		jobs:       make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	staleJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.sweepStaleDevices),
		gocron.WithName("iot-stale-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create stale sweep job", zap.Error(err))
	} else {
		js.jobs["iot-stale-sweep"] = staleJob
	}

	completeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.completePastStays),
		gocron.WithName("booking-completion"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create booking completion job", zap.Error(err))
	} else {
		js.jobs["booking-completion"] = completeJob
	}
}

func (js *JobScheduler) sweepStaleDevices() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := js.iotSvc.SweepStaleDevices(ctx); err != nil {
		js.logger.Error("stale device sweep failed", zap.Error(err))
	}
}

func (js *JobScheduler) completePastStays() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := js.bookingSvc.CompletePastStays(ctx); err != nil {
		js.logger.Error("booking completion sweep failed", zap.Error(err))
	}
}
