package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vltava/config"
	"vltava/services/booking"
	"vltava/services/connectivity"
	"vltava/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task types handled by the replay worker.
const (
	TypeDraftReplay = "draft:replay"
	TypeDraftSweep  = "draft:sweep"
)

// ReplayPayload carries the draft id of one replay task.
type ReplayPayload struct {
	DraftID string `json:"draftId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReplayQueueDB,
	}
}

// ReplayClient enqueues replay work. It implements booking.ReplayEnqueuer.
type ReplayClient struct {
	client *asynq.Client
}

// NewReplayClient returns a client backed by the replay queue's Redis DB.
func NewReplayClient() *ReplayClient {
	return &ReplayClient{client: asynq.NewClient(redisOpts())}
}

// EnqueueReplay schedules one draft for resubmission. Retries back off
// per task, so a stuck draft never blocks the rest of the queue.
func (c *ReplayClient) EnqueueReplay(ctx context.Context, draftID string) error {
	payload, err := json.Marshal(ReplayPayload{DraftID: draftID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeDraftReplay, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.TaskID("replay:"+draftID), // one in-flight task per draft
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	return nil
}

func (c *ReplayClient) enqueueSweep(ctx context.Context) error {
	task := asynq.NewTask(TypeDraftSweep, nil)
	_, err := c.client.EnqueueContext(ctx, task, asynq.Timeout(2*time.Minute))
	return err
}

// InitReplayWorker starts the background replay machinery: an asynq server
// handling per-draft replay tasks and periodic sweeps, a scheduler emitting
// the sweeps, and a connectivity subscription that triggers an immediate
// sweep when the provider comes back.
func InitReplayWorker(sub *booking.SubmissionService, watcher *connectivity.Watcher) {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDraftReplay, handleDraftReplay(sub))
	mux.HandleFunc(TypeDraftSweep, handleDraftSweep(sub, NewReplayClient()))

	go func() {
		logger.Info("starting draft replay worker")
		if err := srv.Run(mux); err != nil {
			logger.Fatal("replay worker failed to start", zap.Error(err))
		}
	}()

	interval := time.Duration(config.AppConfig.ReplayIntervalSec) * time.Second
	scheduler := asynq.NewScheduler(redisOpts(), nil)
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %s", interval),
		asynq.NewTask(TypeDraftSweep, nil),
	); err != nil {
		logger.Fatal("failed to register draft sweep", zap.Error(err))
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal("replay scheduler failed to start", zap.Error(err))
		}
	}()

	// Connectivity restoration triggers a sweep right away instead of
	// waiting for the next tick.
	sweepClient := NewReplayClient()
	watcher.Subscribe(func(online bool) {
		if !online {
			return
		}
		if err := sweepClient.enqueueSweep(context.Background()); err != nil {
			logger.Warn("failed to enqueue connectivity sweep", zap.Error(err))
		}
	})
}

// handleDraftReplay resubmits a single draft. Returning an error hands the
// task back to asynq for a retry with backoff.
func handleDraftReplay(sub *booking.SubmissionService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReplayPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid replay payload: %v: %w", err, asynq.SkipRetry)
		}
		return sub.ReplayDraft(ctx, p.DraftID)
	}
}

// handleDraftSweep enumerates pending drafts and enqueues a replay task for
// each. Per-draft failures stay isolated in their own tasks.
func handleDraftSweep(sub *booking.SubmissionService, client *ReplayClient) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		drafts, err := sub.PendingDrafts(ctx)
		if err != nil {
			return err
		}
		for _, draft := range drafts {
			if err := client.EnqueueReplay(ctx, draft.ID); err != nil {
				logger.Warn("failed to enqueue draft during sweep",
					zap.String("draftId", draft.ID), zap.Error(err))
			}
		}
		if len(drafts) > 0 {
			logger.Info("draft sweep complete", zap.Int("pending", len(drafts)))
		}
		return nil
	}
}
