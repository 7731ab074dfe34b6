// Package taskdb implements the in-memory task database: the single
// authority for task state, the ready-by-tag index used to match tasks to
// workers in O(tags), and the counters exposed as TaskStats. The database
// assumes single-threaded access from the server's request loop; it holds
// no internal lock.
package taskdb

import (
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/judnich/Kickoff/model"
)

// ErrNotFound is returned when an operation references a TaskID the
// database no longer (or never did) hold.
var ErrNotFound = errors.New("taskdb: no such task")

// ErrNotEligible is returned by TakeToRun when no pending task matches the
// worker's advertised tags.
var ErrNotEligible = errors.New("taskdb: no eligible task")

// ErrNotPending is returned by MarkShouldCancel when the task has not yet
// been claimed by a worker; cancellation of a pending task is rejected
// outright rather than synthesizing a fake run status.
var ErrNotPending = errors.New("taskdb: task is still pending")

const maxIDCollisions = 1000
const warnAfterCollisions = 10

// DB is the task database. The zero value is not usable; construct with New.
type DB struct {
	allTasks            map[model.TaskID]*model.Task
	readyByTag          map[string]map[model.TaskID]struct{}
	readyNoRequirements map[model.TaskID]struct{}
	stats               model.TaskStats
	rng                 *rand.Rand
	log                 zerolog.Logger
}

// New returns an empty database.
func New(log zerolog.Logger) *DB {
	return &DB{
		allTasks:            make(map[model.TaskID]*model.Task),
		readyByTag:          make(map[string]map[model.TaskID]struct{}),
		readyNoRequirements: make(map[model.TaskID]struct{}),
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
		log:                 log,
	}
}

// Stats returns a copy of the current counters.
func (db *DB) Stats() model.TaskStats {
	return db.stats
}

// GetTotalTaskCount returns the number of tasks currently held, in any state.
func (db *DB) GetTotalTaskCount() int {
	return len(db.allTasks)
}

// GetTaskByID returns a snapshot of the task, or ErrNotFound.
func (db *DB) GetTaskByID(id model.TaskID) (model.Task, error) {
	t, ok := db.allTasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t.Snapshot(), nil
}

// GetTasksByStates returns brief info for every task whose derived state is
// in states, in unspecified order. Callers enforce MAX_STATUS_TASKS.
func (db *DB) GetTasksByStates(states []model.TaskState) []model.TaskBriefInfo {
	want := make(map[model.TaskState]struct{}, len(states))
	for _, s := range states {
		want[s] = struct{}{}
	}
	out := make([]model.TaskBriefInfo, 0, len(db.allTasks))
	for _, t := range db.allTasks {
		if _, ok := want[t.Status.State()]; ok {
			out = append(out, model.TaskBriefInfo{ID: t.ID, Status: t.Status})
		}
	}
	return out
}

func (db *DB) addToReadyIndex(t *model.Task) {
	required := t.Schedule.RequiredSlice()
	if len(required) == 0 {
		db.readyNoRequirements[t.ID] = struct{}{}
		return
	}
	for _, tag := range required {
		bucket, ok := db.readyByTag[tag]
		if !ok {
			bucket = make(map[model.TaskID]struct{})
			db.readyByTag[tag] = bucket
		}
		bucket[t.ID] = struct{}{}
	}
}

func (db *DB) removeFromReadyIndex(t *model.Task) {
	delete(db.readyNoRequirements, t.ID)
	for _, tag := range t.Schedule.RequiredSlice() {
		if bucket, ok := db.readyByTag[tag]; ok {
			delete(bucket, t.ID)
			if len(bucket) == 0 {
				delete(db.readyByTag, tag)
			}
		}
	}
}

// newTaskID samples the 64-bit space until it finds an unused value.
func (db *DB) newTaskID() (model.TaskID, error) {
	collisions := 0
	for {
		id := model.TaskID(db.rng.Uint64())
		if _, exists := db.allTasks[id]; !exists {
			return id, nil
		}
		collisions++
		if collisions == warnAfterCollisions {
			db.log.Warn().Int("collisions", collisions).Msg("task ID generation is colliding repeatedly")
		}
		if collisions >= maxIDCollisions {
			return 0, errors.New("taskdb: exhausted retries generating a unique task ID")
		}
	}
}

// CreateTask allocates a fresh ID, inserts the task pending, and returns it.
func (db *DB) CreateTask(info model.TaskCreateInfo) (model.Task, error) {
	id, err := db.newTaskID()
	if err != nil {
		return model.Task{}, err
	}
	t := &model.Task{
		ID:       id,
		Command:  info.Command,
		Schedule: info.Schedule.Normalized(),
		Status:   model.TaskStatus{CreateTime: time.Now()},
	}
	db.allTasks[id] = t
	db.addToReadyIndex(t)
	db.stats.NumPending++
	return t.Snapshot(), nil
}

// TakeToRun implements the randomized-offset matching algorithm: workers
// with no tags only match readyNoRequirements; otherwise a random starting
// tag is chosen and each of the worker's tag buckets is inspected in turn,
// wrapping around, until an eligible task is found or every bucket is
// exhausted.
func (db *DB) TakeToRun(workerTags []string) (model.Task, error) {
	if len(workerTags) == 0 {
		for id := range db.readyNoRequirements {
			return db.claim(id)
		}
		return model.Task{}, ErrNotEligible
	}

	eligible := make(map[string]struct{}, len(workerTags))
	for _, tag := range workerTags {
		eligible[tag] = struct{}{}
	}

	k := len(workerTags)
	offset := db.rng.Intn(k)
	for i := 0; i < k; i++ {
		tag := workerTags[(i+offset)%k]
		bucket, ok := db.readyByTag[tag]
		if !ok || len(bucket) == 0 {
			continue
		}
		for id := range bucket {
			t := db.allTasks[id]
			if taskEligible(t, eligible) {
				return db.claim(id)
			}
		}
	}
	return model.Task{}, ErrNotEligible
}

func taskEligible(t *model.Task, workerTags map[string]struct{}) bool {
	for _, req := range t.Schedule.RequiredResources.ToSlice() {
		if _, ok := workerTags[req]; !ok {
			return false
		}
	}
	return true
}

func (db *DB) claim(id model.TaskID) (model.Task, error) {
	t := db.allTasks[id]
	db.removeFromReadyIndex(t)
	now := time.Now()
	t.Status.RunStatus = &model.TaskRunStatus{
		WasCanceled:   false,
		StartTime:     now,
		HeartbeatTime: now,
	}
	db.stats.NumPending--
	db.stats.NumRunning++
	return t.Snapshot(), nil
}

// HeartbeatTask bumps heartbeatTime. It is silently a no-op (success) if
// the task is still pending, and fails if the task no longer exists.
func (db *DB) HeartbeatTask(id model.TaskID) error {
	t, ok := db.allTasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.RunStatus == nil {
		return nil
	}
	t.Status.RunStatus.HeartbeatTime = time.Now()
	return nil
}

// WasTaskCanceled reports the task's current cancel flag, alongside a
// heartbeat bump, matching the worker's combined RPC.
func (db *DB) WasTaskCanceled(id model.TaskID) (bool, error) {
	t, ok := db.allTasks[id]
	if !ok {
		return false, ErrNotFound
	}
	if t.Status.RunStatus == nil {
		return false, nil
	}
	t.Status.RunStatus.HeartbeatTime = time.Now()
	return t.Status.RunStatus.WasCanceled, nil
}

// MarkTaskShouldCancel transitions Running to Canceling. Cancellation of a
// pending task is rejected (ErrNotPending): a pending task has no worker to
// notify, so there is nothing for cancellation to act on until it starts
// running. Cancellation is idempotent once a task is already Canceling.
func (db *DB) MarkTaskShouldCancel(id model.TaskID) error {
	t, ok := db.allTasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.RunStatus == nil {
		return ErrNotPending
	}
	if t.Status.RunStatus.WasCanceled {
		return nil
	}
	t.Status.RunStatus.WasCanceled = true
	db.stats.NumRunning--
	db.stats.NumCanceling++
	return nil
}

// MarkTaskFinished is the terminal transition: the task is removed from the
// database entirely. Calling it twice on the same ID returns ErrNotFound
// the second time, since the first call already deleted the row.
func (db *DB) MarkTaskFinished(id model.TaskID) error {
	t, ok := db.allTasks[id]
	if !ok {
		return ErrNotFound
	}
	switch {
	case t.Status.RunStatus == nil:
		db.stats.NumPending--
	case t.Status.RunStatus.WasCanceled:
		db.stats.NumCanceling--
	default:
		db.stats.NumRunning--
	}
	db.stats.NumFinished++
	db.removeFromReadyIndex(t)
	delete(db.allTasks, id)
	return nil
}

// CleanupZombieTasks reaps every running/canceling task whose heartbeat is
// older than timeout, finishing it as if the worker had reported completion.
// Returns the number of tasks reaped.
func (db *DB) CleanupZombieTasks(timeout time.Duration) int {
	now := time.Now()
	var dead []model.TaskID
	for id, t := range db.allTasks {
		if t.Status.RunStatus == nil {
			continue
		}
		if now.Sub(t.Status.RunStatus.HeartbeatTime) >= timeout {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		_ = db.MarkTaskFinished(id)
	}
	return len(dead)
}
