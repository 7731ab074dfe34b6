package taskserver_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/judnich/Kickoff/internal/config"
	"github.com/judnich/Kickoff/internal/events"
	"github.com/judnich/Kickoff/internal/intern"
	"github.com/judnich/Kickoff/internal/protocol"
	"github.com/judnich/Kickoff/internal/reqrep"
	"github.com/judnich/Kickoff/internal/taskclient"
	"github.com/judnich/Kickoff/internal/taskserver"
	"github.com/judnich/Kickoff/model"
)

func startTestServer(t *testing.T) (*taskserver.Server, func()) {
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

func TestHappyPathDispatch(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	id, err := client.Create(model.TaskCreateInfo{
		Command:  "echo hi",
		Schedule: model.NewTaskSchedule([]string{"cuda"}, nil),
	})
	require.NoError(t, err)

	info, err := client.TakeToRun([]string{"cuda", "amd64"})
	require.NoError(t, err)
	require.Equal(t, id, info.ID)
	require.Equal(t, "echo hi", info.Command)

	require.NoError(t, client.MarkFinished(id))

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(1), stats.NumFinished)
	require.Equal(t, int32(0), stats.NumPending)
	require.Equal(t, int32(0), stats.NumRunning)
}

func TestTagMismatchReturnsFailed(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Create(model.TaskCreateInfo{
		Command:  "needs gpu",
		Schedule: model.NewTaskSchedule([]string{"gpu"}, nil),
	})
	require.NoError(t, err)

	_, err = client.TakeToRun([]string{"cpu"})
	require.ErrorIs(t, err, taskclient.ErrFailed)

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(1), stats.NumPending)
}

func TestCancelWhileRunning(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	id, err := client.Create(model.TaskCreateInfo{Command: "sleep 100"})
	require.NoError(t, err)

	_, err = client.TakeToRun(nil)
	require.NoError(t, err)

	require.NoError(t, client.MarkShouldCancel(id))

	wasCanceled, err := client.HeartbeatAndCheckWasTaskCanceled(id)
	require.NoError(t, err)
	require.True(t, wasCanceled)

	require.NoError(t, client.MarkFinished(id))

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(1), stats.NumFinished)
}

func TestMissingTaskReturnsFailed(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetCommand(model.TaskID(0xFFFFFFFFFFFFFFFF))
	require.ErrorIs(t, err, taskclient.ErrFailed)
}

func TestUnknownTagReturnsBadRequest(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	conn, err := reqrep.Dial(srv.Addr())
	require.NoError(t, err)
	defer conn.Close()

	reply, err := conn.Call([]byte{0xFF})
	require.NoError(t, err)
	require.Equal(t, uint8(protocol.ReplyBadRequest), reply[0])

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	stats, err := client.GetStats()
	require.NoError(t, err)
	require.Equal(t, int32(0), stats.NumPending)
}

func TestListThreshold(t *testing.T) {
	srv, stop := startTestServer(t)
	defer stop()

	client, err := taskclient.Dial(srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 100; i++ {
		_, err := client.Create(model.TaskCreateInfo{Command: "echo hi"})
		require.NoError(t, err)
	}

	listed, err := client.GetTasksByStates([]model.TaskState{model.TaskPending})
	require.NoError(t, err)
	require.Len(t, listed, 100)

	_, err = client.Create(model.TaskCreateInfo{Command: "echo hi"})
	require.NoError(t, err)

	_, err = client.GetTasksByStates([]model.TaskState{model.TaskPending})
	require.ErrorIs(t, err, taskclient.ErrFailed)
}
