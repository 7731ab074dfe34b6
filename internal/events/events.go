// Package events publishes task lifecycle transitions to an optional NATS
// JetStream stream. Publishing is best-effort: a publish failure is logged
// and otherwise ignored, so no request fails on account of the event bus.
// JetStreamPublisher.Publish waits for the stream's acknowledgement, so the
// caller is held until the ack arrives or the publish times out. A failure
// to connect when the publisher is built is returned to the caller.
package events

import (
	"fmt"

	"github.com/judnich/Kickoff/model"
)

// EventKind names a task lifecycle transition. Every kind shares the
// eventSubjectPrefix so a JetStream stream can filter on one wildcard.
type EventKind string

const eventSubjectPrefix = "kickoff.task"

const (
	EventCreated  EventKind = eventSubjectPrefix + ".created"
	EventTaken    EventKind = eventSubjectPrefix + ".taken"
	EventCanceled EventKind = eventSubjectPrefix + ".canceled"
	EventFinished EventKind = eventSubjectPrefix + ".finished"
)

// Publisher emits task lifecycle events. Publish never returns an error the
// caller is expected to act on; implementations log failures internally.
type Publisher interface {
	Publish(kind EventKind, id model.TaskID)
	Shutdown()
}

// NoopPublisher is used when KICKOFF_NATS_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) Publish(EventKind, model.TaskID) {}
func (NoopPublisher) Shutdown()                       {}

func subjectFor(kind EventKind, id model.TaskID) string {
	return fmt.Sprintf("%s.%d", kind, id)
}
