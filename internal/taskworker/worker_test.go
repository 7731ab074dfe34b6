package taskworker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/internal/events"
	"github.com/judnich/Kickoff/internal/intern"
	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/internal/taskserver"
	"github.com/judnich/Kickoff/model"
)

func TestGrowIdleRate(t *testing.T) {
	cur := 100 * time.Millisecond
	got := grow(cur, time.Hour)
	want := cur + cur/4 + time.Millisecond
	require.Equal(t, want, got)
}

func TestGrowRunningRate(t *testing.T) {
	cur := 100 * time.Millisecond
	got := growRunning(cur, time.Hour)
	want := cur + cur/2 + time.Millisecond
	require.Equal(t, want, got)
}

func TestGrowRunningIsFasterThanGrow(t *testing.T) {
	cur := 200 * time.Millisecond
	require.Greater(t, growRunning(cur, time.Hour), grow(cur, time.Hour))
}

func TestGrowClampsAtMax(t *testing.T) {
	require.Equal(t, time.Second, grow(time.Second, time.Second))
	require.Equal(t, time.Second, growRunning(2*time.Second, time.Second))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 10*time.Millisecond, clamp(1*time.Millisecond, 10*time.Millisecond, time.Second))
	require.Equal(t, time.Second, clamp(5*time.Second, 10*time.Millisecond, time.Second))
	require.Equal(t, 500*time.Millisecond, clamp(500*time.Millisecond, 10*time.Millisecond, time.Second))
}

func TestMaxRunningPollIntervalClampedToWaitingCeiling(t *testing.T) {
	// workerHeartbeatTimeout/2 is 150s, well above maxWaitingPollInterval
	// (60s), so the running-task poll is capped at the same ceiling as the
	// idle loop rather than drifting past it.
	require.Equal(t, maxWaitingPollInterval, maxRunningPollInterval())
}

func startTestWorkerServer(t *testing.T) (*taskserver.Server, func()) {
	t.Helper()
	srv, err := taskserver.New(&config.ServerConfig{Port: 0}, intern.NewMemoryPool(), events.NoopPublisher{}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()

	return srv, func() {
		cancel()
		srv.Close()
		<-done
	}
}

func TestRunOneTaskCancelKillsProcess(t *testing.T) {
	srv, stop := startTestWorkerServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	id, err := client.Create(model.TaskCreateInfo{Command: "sleep 30"})
	require.NoError(t, err)

	info, err := client.TakeToRun(nil)
	require.NoError(t, err)
	require.Equal(t, id, info.ID)

	done := make(chan struct{})
	w := New(client, nil, zerolog.Nop())
	go func() {
		defer close(done)
		w.runOneTask(context.Background(), info)
	}()

	require.Eventually(t, func() bool {
		return client.MarkShouldCancel(id) == nil
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runOneTask did not return after cancellation")
	}

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(1), stats.NumFinished)
}

func TestRunOneTaskReportsFinishedOnNaturalExit(t *testing.T) {
	srv, stop := startTestWorkerServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Create(model.TaskCreateInfo{Command: "true"})
	require.NoError(t, err)

	info, err := client.TakeToRun(nil)
	require.NoError(t, err)

	w := New(client, nil, zerolog.Nop())
	w.runOneTask(context.Background(), info)

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(1), stats.NumFinished)
}
