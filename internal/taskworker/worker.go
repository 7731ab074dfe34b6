// Package taskworker implements the long-running pull/execute/heartbeat
// loop: claim a task, launch its command as a child process, heartbeat
// while it runs, react to a remote cancel, and report completion.
package taskworker

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/model"
)

const (
	minServerPollInterval  = 1000 * time.Millisecond
	maxWaitingPollInterval = 60 * time.Second
	minProcessPollInterval = 100 * time.Millisecond
	workerHeartbeatTimeout = 300 * time.Second
)

// maxRunningPollInterval clamps the process-poll backoff so the worker
// checks in with the server at least twice per heartbeat timeout window.
func maxRunningPollInterval() time.Duration {
	half := workerHeartbeatTimeout / 2
	switch {
	case half < minProcessPollInterval:
		return minProcessPollInterval
	case half > maxWaitingPollInterval:
		return maxWaitingPollInterval
	default:
		return half
	}
}

// grow implements the idle-poll backoff formula: next = min(cur*1.25 + 1, cap).
func grow(cur, max time.Duration) time.Duration {
	next := cur + cur/4 + time.Millisecond
	if next > max {
		return max
	}
	return next
}

// growRunning implements the running-task poll backoff formula, which grows
// faster than the idle-loop one: next = min(cur*1.5 + 1, cap).
func growRunning(cur, max time.Duration) time.Duration {
	next := cur + cur/2 + time.Millisecond
	if next > max {
		return max
	}
	return next
}

// Worker pulls and runs tasks until Stop is called or its context ends.
type Worker struct {
	client  *taskclient.Client
	tags    []string
	log     zerolog.Logger
	running bool
}

// New builds a worker that advertises tags as its resource tags.
func New(client *taskclient.Client, tags []string, log zerolog.Logger) *Worker {
	return &Worker{client: client, tags: tags, log: log, running: true}
}

// Stop lets any in-flight task finish, then exits the main loop on its next
// check — the worker-level half of the graceful double-SIGINT shutdown;
// the CLI layer calls this on the first interrupt and exits the process
// directly on the second.
func (w *Worker) Stop() {
	w.running = false
}

// Run is the worker's main loop. It returns when ctx is canceled or Stop
// has been called and the current poll has nothing to do.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Msg("starting worker")
	interval := time.Duration(0)

	for w.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		info, err := w.client.TakeToRun(w.tags)
		if err != nil {
			if !errors.Is(err, taskclient.ErrFailed) {
				w.log.Warn().Err(err).Msg("takeTaskToRun transport error")
			}
			interval = clamp(interval, minServerPollInterval, maxWaitingPollInterval)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			interval = grow(interval, maxWaitingPollInterval)
			continue
		}

		interval = 0
		w.runOneTask(ctx, info)
	}
	return nil
}

func clamp(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (w *Worker) runOneTask(ctx context.Context, info model.TaskRunInfo) {
	w.log.Info().Uint64("task_id", uint64(info.ID)).Str("command", info.Command).Msg("starting task")

	cmd := exec.Command("sh", "-c", info.Command)
	cmd.Dir = "."
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		w.log.Warn().Err(err).Uint64("task_id", uint64(info.ID)).Msg("failed to launch task, reporting finished")
		if err := w.client.MarkFinished(info.ID); err != nil {
			w.log.Warn().Err(err).Uint64("task_id", uint64(info.ID)).Msg("failed to mark task finished")
		}
		return
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	pollInterval := time.Duration(0)
	sleptSinceHeartbeat := time.Duration(0)
	maxPoll := maxRunningPollInterval()

loop:
	for {
		select {
		case <-exited:
			break loop
		case <-time.After(clamp(pollInterval, minProcessPollInterval, maxPoll)):
			elapsed := clamp(pollInterval, minProcessPollInterval, maxPoll)
			pollInterval = growRunning(pollInterval, maxPoll)
			sleptSinceHeartbeat += elapsed

			if sleptSinceHeartbeat < minServerPollInterval {
				continue
			}
			sleptSinceHeartbeat = 0

			canceled, err := w.client.HeartbeatAndCheckWasTaskCanceled(info.ID)
			if err != nil {
				w.log.Warn().Err(err).Uint64("task_id", uint64(info.ID)).Msg("heartbeat failed")
				continue
			}
			if canceled {
				w.log.Info().Uint64("task_id", uint64(info.ID)).Msg("killing canceled task")
				killProcessGroup(cmd)
				<-exited
				break loop
			}
		}
	}

	w.log.Info().Uint64("task_id", uint64(info.ID)).Msg("task finished")
	if err := w.client.MarkFinished(info.ID); err != nil {
		w.log.Warn().Err(err).Uint64("task_id", uint64(info.ID)).Msg("failed to mark task finished")
	}
}
