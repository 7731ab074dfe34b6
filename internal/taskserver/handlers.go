package taskserver

import (
	"github.com/judnich/Kickoff/internal/events"
	"github.com/judnich/Kickoff/internal/protocol"
	"github.com/judnich/Kickoff/internal/wire"
	"github.com/judnich/Kickoff/model"
)

func (s *Server) badRequestReply() []byte {
	return protocol.NewReplyWriter(protocol.ReplyBadRequest).Bytes()
}

func (s *Server) failedReply() []byte {
	return protocol.NewReplyWriter(protocol.ReplyFailed).Bytes()
}

// generateReply decodes a single request frame, dispatches to the matching
// handler, and returns a complete reply frame. It never panics past this
// point and never blocks beyond the database operations it performs.
func (s *Server) generateReply(frame []byte) []byte {
	reqType, r, err := protocol.DecodeRequestHeader(frame)
	if err != nil {
		s.stats.badRequests++
		return s.badRequestReply()
	}

	var reply []byte
	switch reqType {
	case protocol.ReqGetCommand:
		reply = s.handleGetCommand(r)
	case protocol.ReqGetSchedule:
		reply = s.handleGetSchedule(r)
	case protocol.ReqGetStatus:
		reply = s.handleGetStatus(r)
	case protocol.ReqGetStats:
		reply = s.handleGetStats(r)
	case protocol.ReqGetTasksByStates:
		reply = s.handleGetTasksByStates(r)
	case protocol.ReqCreate:
		reply = s.handleCreate(r)
	case protocol.ReqTakeToRun:
		reply = s.handleTakeToRun(r)
	case protocol.ReqHeartbeatAndCheckWasTaskCanceled:
		reply = s.handleHeartbeat(r)
	case protocol.ReqMarkFinished:
		reply = s.handleMarkFinished(r)
	case protocol.ReqMarkShouldCancel:
		reply = s.handleMarkShouldCancel(r)
	default:
		reply = s.badRequestReply()
	}

	switch protocol.ReplyType(reply[0]) {
	case protocol.ReplySuccess:
		s.stats.succeeded++
	case protocol.ReplyFailed:
		s.stats.failed++
	default:
		s.stats.badRequests++
	}
	return reply
}

func readSoleTaskID(r *wire.Reader) (model.TaskID, bool) {
	id, err := r.ReadU64()
	if err != nil || !r.Done() {
		return 0, false
	}
	return model.TaskID(id), true
}

func (s *Server) handleGetCommand(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	task, err := s.db.GetTaskByID(id)
	if err != nil {
		return s.failedReply()
	}
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	w.WriteString(task.Command)
	return w.Bytes()
}

func (s *Server) handleGetSchedule(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	task, err := s.db.GetTaskByID(id)
	if err != nil {
		return s.failedReply()
	}
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	protocol.WriteSchedule(w, task.Schedule)
	return w.Bytes()
}

func (s *Server) handleGetStatus(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	task, err := s.db.GetTaskByID(id)
	if err != nil {
		return s.failedReply()
	}
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	protocol.WriteStatus(w, task.Status)
	return w.Bytes()
}

func (s *Server) handleGetStats(r *wire.Reader) []byte {
	if !r.Done() {
		return s.badRequestReply()
	}
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	protocol.WriteStats(w, s.db.Stats())
	return w.Bytes()
}

func (s *Server) handleGetTasksByStates(r *wire.Reader) []byte {
	var states []model.TaskState
	for !r.Done() {
		b, err := r.ReadU8()
		if err != nil {
			return s.badRequestReply()
		}
		states = append(states, model.TaskState(b))
	}

	if s.db.GetTotalTaskCount() > maxStatusTasks {
		return s.failedReply()
	}

	infos := s.db.GetTasksByStates(states)
	if len(infos) > maxStatusTasks {
		return s.failedReply()
	}

	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	for _, info := range infos {
		protocol.WriteBriefInfo(w, info)
	}
	return w.Bytes()
}

func (s *Server) handleCreate(r *wire.Reader) []byte {
	info, err := protocol.ReadCreateInfo(r)
	if err != nil || !r.Done() {
		return s.badRequestReply()
	}
	info.Command, err = s.intern.Intern(info.Command)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to intern command string")
	}
	task, err := s.db.CreateTask(info)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create task")
		return s.failedReply()
	}
	s.events.Publish(events.EventCreated, task.ID)
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	w.WriteU64(uint64(task.ID))
	return w.Bytes()
}

func (s *Server) handleTakeToRun(r *wire.Reader) []byte {
	var tags []string
	for !r.Done() {
		tag, err := r.ReadString()
		if err != nil {
			return s.badRequestReply()
		}
		tags = append(tags, tag)
	}

	task, err := s.db.TakeToRun(tags)
	if err != nil {
		return s.failedReply()
	}
	s.events.Publish(events.EventTaken, task.ID)
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	protocol.WriteRunInfo(w, model.TaskRunInfo{ID: task.ID, Command: task.Command})
	return w.Bytes()
}

func (s *Server) handleHeartbeat(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	canceled, err := s.db.WasTaskCanceled(id)
	if err != nil {
		return s.failedReply()
	}
	w := protocol.NewReplyWriter(protocol.ReplySuccess)
	w.WriteBool(canceled)
	return w.Bytes()
}

func (s *Server) handleMarkFinished(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	if err := s.db.MarkTaskFinished(id); err != nil {
		return s.failedReply()
	}
	s.events.Publish(events.EventFinished, id)
	return protocol.NewReplyWriter(protocol.ReplySuccess).Bytes()
}

func (s *Server) handleMarkShouldCancel(r *wire.Reader) []byte {
	id, ok := readSoleTaskID(r)
	if !ok {
		return s.badRequestReply()
	}
	if err := s.db.MarkTaskShouldCancel(id); err != nil {
		return s.failedReply()
	}
	s.events.Publish(events.EventCanceled, id)
	return protocol.NewReplyWriter(protocol.ReplySuccess).Bytes()
}
