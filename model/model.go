// Package model holds the wire-level and database-level data types shared by
// the task server, task client, and task worker.
package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// TaskID identifies a task for its entire lifetime. An ID is unique among the
// tasks a server currently holds; the ID of a finished task is not reserved,
// and IDs are not stable across restarts.
type TaskID uint64

// TaskState is derived from a Task's status fields; it is never stored
// directly in the database.
type TaskState uint8

const (
	TaskPending TaskState = iota
	TaskRunning
	TaskCanceling
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskRunning:
		return "Running"
	case TaskCanceling:
		return "Canceling"
	default:
		return "Unknown"
	}
}

// TaskSchedule carries the resource-tag requirements used to match a task to
// an eligible worker. OptionalResources is carried and returned faithfully
// but never consulted during matching.
type TaskSchedule struct {
	RequiredResources mapset.Set[string]
	OptionalResources mapset.Set[string]
}

// NewTaskSchedule builds a schedule from plain string slices, normalizing nil
// inputs to empty (non-nil) sets so downstream set operations never panic.
func NewTaskSchedule(required, optional []string) TaskSchedule {
	return TaskSchedule{
		RequiredResources: mapset.NewThreadUnsafeSet(required...),
		OptionalResources: mapset.NewThreadUnsafeSet(optional...),
	}
}

// Normalized returns s with any nil component set replaced by an empty one.
// A TaskSchedule built as a bare struct literal (the zero value, as when a
// caller only cares about Command) otherwise carries nil mapset.Set
// interfaces, and every other method on this type assumes non-nil sets.
func (s TaskSchedule) Normalized() TaskSchedule {
	out := s
	if out.RequiredResources == nil {
		out.RequiredResources = mapset.NewThreadUnsafeSet[string]()
	}
	if out.OptionalResources == nil {
		out.OptionalResources = mapset.NewThreadUnsafeSet[string]()
	}
	return out
}

// RequiredSlice returns the required resource tags, or nil if the schedule
// was never normalized and carries a nil set.
func (s TaskSchedule) RequiredSlice() []string {
	if s.RequiredResources == nil {
		return nil
	}
	return s.RequiredResources.ToSlice()
}

// OptionalSlice returns the optional resource tags, or nil if the schedule
// was never normalized and carries a nil set.
func (s TaskSchedule) OptionalSlice() []string {
	if s.OptionalResources == nil {
		return nil
	}
	return s.OptionalResources.ToSlice()
}

// TaskRunStatus is present from the moment a worker claims a task onward.
type TaskRunStatus struct {
	WasCanceled   bool
	StartTime     time.Time
	HeartbeatTime time.Time
}

// TaskStatus is the full runtime status of a task. RunStatus is absent while
// the task is pending.
type TaskStatus struct {
	CreateTime time.Time
	RunStatus  *TaskRunStatus
}

// State classifies a status into the three live task states.
func (s TaskStatus) State() TaskState {
	if s.RunStatus == nil {
		return TaskPending
	}
	if s.RunStatus.WasCanceled {
		return TaskCanceling
	}
	return TaskRunning
}

// Task is one row of the task database. Command and ID are immutable once
// created; Status evolves through the pending/running/canceling lifecycle.
type Task struct {
	ID       TaskID
	Command  string
	Schedule TaskSchedule
	Status   TaskStatus
}

// Snapshot returns a shallow, independently-owned copy of the task safe to
// hand to callers outside the database (Schedule's sets are cloned so a
// caller cannot mutate database state through the returned value).
func (t *Task) Snapshot() Task {
	cp := *t
	cp.Schedule = t.Schedule.Normalized()
	cp.Schedule.RequiredResources = cp.Schedule.RequiredResources.Clone()
	cp.Schedule.OptionalResources = cp.Schedule.OptionalResources.Clone()
	if t.Status.RunStatus != nil {
		rs := *t.Status.RunStatus
		cp.Status.RunStatus = &rs
	}
	return cp
}

// Summary renders a human-readable rendition of the schedule's tags, for the
// CLI's "info" command. It is never sent over the wire.
func (s TaskSchedule) Summary() string {
	required := s.RequiredSlice()
	optional := s.OptionalSlice()
	if len(required) == 0 && len(optional) == 0 {
		return "no resource requirements"
	}
	out := ""
	if len(required) > 0 {
		out += "requires [" + strings.Join(sortedCopy(required), ", ") + "]"
	}
	if len(optional) > 0 {
		if out != "" {
			out += ", "
		}
		out += "wants [" + strings.Join(sortedCopy(optional), ", ") + "]"
	}
	return out
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

// Summary renders a human-readable rendition of the status for the CLI's
// "info" and "list" commands: the derived state plus the relevant
// timestamps, in terms of elapsed time since now.
func (s TaskStatus) Summary() string {
	switch s.State() {
	case TaskPending:
		return fmt.Sprintf("Pending (created %s ago)", since(s.CreateTime))
	case TaskRunning:
		return fmt.Sprintf("Running (started %s ago, last heartbeat %s ago)",
			since(s.RunStatus.StartTime), since(s.RunStatus.HeartbeatTime))
	case TaskCanceling:
		return fmt.Sprintf("Canceling (started %s ago, last heartbeat %s ago)",
			since(s.RunStatus.StartTime), since(s.RunStatus.HeartbeatTime))
	default:
		return "Unknown"
	}
}

func since(t time.Time) string {
	return time.Since(t).Truncate(time.Second).String()
}

// TaskStats are the four monotone-ish counters the database maintains.
// numFinished is strictly monotone; the other three only ever move between
// each other, always summing to the current task count.
type TaskStats struct {
	NumPending   int32
	NumRunning   int32
	NumCanceling int32
	NumFinished  int32
}

// TaskCreateInfo is the payload of a Create request.
type TaskCreateInfo struct {
	Command  string
	Schedule TaskSchedule
}

// TaskBriefInfo is returned by GetTasksByStates: just enough to render a
// debug listing without a second round trip per task.
type TaskBriefInfo struct {
	ID     TaskID
	Status TaskStatus
}

// TaskRunInfo is what a worker receives from a successful TakeToRun.
type TaskRunInfo struct {
	ID      TaskID
	Command string
}

// ServerStats are the reply-outcome counters the server accumulates across
// its whole lifetime, in addition to the database's TaskStats.
type ServerStats struct {
	Succeeded   uint64
	Failed      uint64
	BadRequests uint64
}
