package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"referral-rewards/internal/logger"
)

// Refresher reloads a cached read model
type Refresher interface {
	Refresh(ctx context.Context) error
}

// LeaderboardJob keeps the leaderboard cache warm
type LeaderboardJob struct {
	refresher Refresher
	log       *logger.Logger
	timeout   time.Duration
	scheduler gocron.Scheduler
}

func NewLeaderboardJob(refresher Refresher, log *logger.Logger) *LeaderboardJob {
	return &LeaderboardJob{
		refresher: refresher,
		log:       log.With("component", "leaderboard_job"),
		timeout:   30 * time.Second,
	}
}

// Start begins refreshing the leaderboard every interval, starting immediately
func (j *LeaderboardJob) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.Run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule leaderboard refresh: %w", err)
	}

	sched.Start()
	j.scheduler = sched
	return nil
}

// Run performs a single refresh
func (j *LeaderboardJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.refresher.Refresh(ctx); err != nil {
		j.log.Error("leaderboard refresh failed", "error", err)
		return
	}
	j.log.Debug("leaderboard refreshed")
}

// Stop shuts the scheduler down
func (j *LeaderboardJob) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	return j.scheduler.Shutdown()
}
