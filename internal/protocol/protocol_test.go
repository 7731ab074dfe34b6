package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/judnich/Kickoff/internal/wire"
	"github.com/judnich/Kickoff/model"
)

func TestScheduleRoundTrip(t *testing.T) {
	cases := []model.TaskSchedule{
		model.NewTaskSchedule(nil, nil),
		model.NewTaskSchedule([]string{"cuda"}, nil),
		model.NewTaskSchedule([]string{"cuda", "amd64"}, []string{"fast-disk"}),
	}
	for _, sched := range cases {
		w := wire.NewWriter()
		WriteSchedule(w, sched)
		r := wire.NewReader(w.Bytes())
		got, err := ReadSchedule(r)
		require.NoError(t, err)
		require.True(t, r.Done())
		require.True(t, got.RequiredResources.Equal(sched.RequiredResources))
		require.True(t, got.OptionalResources.Equal(sched.OptionalResources))
	}
}

func TestStatusRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	pending := model.TaskStatus{CreateTime: now}
	w := wire.NewWriter()
	WriteStatus(w, pending)
	r := wire.NewReader(w.Bytes())
	got, err := ReadStatus(r)
	require.NoError(t, err)
	require.True(t, r.Done())
	require.Equal(t, pending.CreateTime, got.CreateTime)
	require.Nil(t, got.RunStatus)
	require.Equal(t, model.TaskPending, got.State())

	running := model.TaskStatus{
		CreateTime: now,
		RunStatus: &model.TaskRunStatus{
			WasCanceled:   false,
			StartTime:     now.Add(time.Second),
			HeartbeatTime: now.Add(2 * time.Second),
		},
	}
	w2 := wire.NewWriter()
	WriteStatus(w2, running)
	r2 := wire.NewReader(w2.Bytes())
	got2, err := ReadStatus(r2)
	require.NoError(t, err)
	require.True(t, r2.Done())
	require.Equal(t, model.TaskRunning, got2.State())
	require.Equal(t, running.RunStatus.StartTime, got2.RunStatus.StartTime)
}

func TestCreateInfoRoundTrip(t *testing.T) {
	info := model.TaskCreateInfo{
		Command:  "echo hi",
		Schedule: model.NewTaskSchedule([]string{"cuda"}, nil),
	}
	w := wire.NewWriter()
	WriteCreateInfo(w, info)
	r := wire.NewReader(w.Bytes())
	got, err := ReadCreateInfo(r)
	require.NoError(t, err)
	require.True(t, r.Done())
	require.Equal(t, info.Command, got.Command)
	require.True(t, got.Schedule.RequiredResources.Equal(info.Schedule.RequiredResources))
}

func TestStatsRoundTrip(t *testing.T) {
	stats := model.TaskStats{NumPending: 3, NumRunning: 1, NumCanceling: 0, NumFinished: 42}
	w := wire.NewWriter()
	WriteStats(w, stats)
	r := wire.NewReader(w.Bytes())
	got, err := ReadStats(r)
	require.NoError(t, err)
	require.True(t, r.Done())
	require.Equal(t, stats, got)
}

func TestRunInfoRoundTrip(t *testing.T) {
	info := model.TaskRunInfo{ID: 0xDEADBEEFCAFEBABE, Command: "echo hi"}
	w := wire.NewWriter()
	WriteRunInfo(w, info)
	r := wire.NewReader(w.Bytes())
	got, err := ReadRunInfo(r)
	require.NoError(t, err)
	require.True(t, r.Done())
	require.Equal(t, info, got)
}

func TestRequestHeaderUnknownTag(t *testing.T) {
	_, _, err := DecodeRequestHeader([]byte{0xFF})
	require.Error(t, err)
}

func TestRequestHeaderEmptyFrame(t *testing.T) {
	_, _, err := DecodeRequestHeader(nil)
	require.Error(t, err)
}
