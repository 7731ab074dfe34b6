package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTaskScheduleZeroValueIsSafe(t *testing.T) {
	var s TaskSchedule
	require.Nil(t, s.RequiredSlice())
	require.Nil(t, s.OptionalSlice())
	require.Equal(t, "no resource requirements", s.Summary())

	norm := s.Normalized()
	require.Empty(t, norm.RequiredSlice())
	require.Empty(t, norm.OptionalSlice())
}

func TestTaskSnapshotNormalizesZeroValueSchedule(t *testing.T) {
	task := &Task{ID: 1, Command: "echo hi"}
	snap := task.Snapshot()
	require.NotNil(t, snap.Schedule.RequiredResources)
	require.NotNil(t, snap.Schedule.OptionalResources)
	require.True(t, snap.Schedule.RequiredResources.IsEmpty())
}

func TestTaskScheduleSummaryIncludesBothSets(t *testing.T) {
	s := NewTaskSchedule([]string{"cuda"}, []string{"fast-disk"})
	require.Equal(t, "requires [cuda], wants [fast-disk]", s.Summary())
}

func TestTaskStatusSummaryByState(t *testing.T) {
	now := time.Now()

	pending := TaskStatus{CreateTime: now.Add(-time.Minute)}
	require.Contains(t, pending.Summary(), "Pending")

	running := TaskStatus{
		CreateTime: now.Add(-time.Minute),
		RunStatus:  &TaskRunStatus{StartTime: now.Add(-30 * time.Second), HeartbeatTime: now},
	}
	require.Contains(t, running.Summary(), "Running")

	canceling := TaskStatus{
		CreateTime: now.Add(-time.Minute),
		RunStatus:  &TaskRunStatus{WasCanceled: true, StartTime: now.Add(-30 * time.Second), HeartbeatTime: now},
	}
	require.Contains(t, canceling.Summary(), "Canceling")
}
