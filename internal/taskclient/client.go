// Package taskclient is the synchronous RPC façade used by both the CLI and
// the task worker: one method per request kind, each sending one frame over
// the connection opened by Dial and blocking for the matching reply. The
// client is not thread-safe; concurrent callers must serialize externally.
package taskclient

import (
	"errors"

	"github.com/judnich/Kickoff/internal/protocol"
	"github.com/judnich/Kickoff/internal/reqrep"
	"github.com/judnich/Kickoff/internal/wire"
	"github.com/judnich/Kickoff/model"
)

// ErrFailed is returned when the server replies Failed (well-formed
// request, logically impossible answer).
var ErrFailed = errors.New("taskclient: request failed")

// ErrBadRequest is returned when the server replies BadRequest, which a
// correctly-behaving client should never trigger.
var ErrBadRequest = errors.New("taskclient: server rejected request as malformed")

// Client owns one REQ-style connection to a task server.
type Client struct {
	conn *reqrep.Conn
}

// Dial connects to addr ("host:port").
func Dial(addr string) (*Client, error) {
	conn, err := reqrep.Dial(addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(req *wire.Writer) (protocol.ReplyType, *wire.Reader, error) {
	raw, err := c.conn.Call(req.Bytes())
	if err != nil {
		return 0, nil, err
	}
	return protocol.DecodeReplyHeader(raw)
}

func replyErr(t protocol.ReplyType, err error) error {
	if err != nil {
		return err
	}
	switch t {
	case protocol.ReplySuccess:
		return nil
	case protocol.ReplyFailed:
		return ErrFailed
	default:
		return ErrBadRequest
	}
}

// GetCommand returns the task's immutable command string.
func (c *Client) GetCommand(id model.TaskID) (string, error) {
	w := protocol.NewRequestWriter(protocol.ReqGetCommand)
	w.WriteU64(uint64(id))
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return "", err
	}
	return r.ReadString()
}

// GetSchedule returns the task's resource-tag schedule.
func (c *Client) GetSchedule(id model.TaskID) (model.TaskSchedule, error) {
	w := protocol.NewRequestWriter(protocol.ReqGetSchedule)
	w.WriteU64(uint64(id))
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return model.TaskSchedule{}, err
	}
	return protocol.ReadSchedule(r)
}

// GetStatus returns the task's current status.
func (c *Client) GetStatus(id model.TaskID) (model.TaskStatus, error) {
	w := protocol.NewRequestWriter(protocol.ReqGetStatus)
	w.WriteU64(uint64(id))
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return model.TaskStatus{}, err
	}
	return protocol.ReadStatus(r)
}

// GetStats returns the database's current counters.
func (c *Client) GetStats() (model.TaskStats, error) {
	w := protocol.NewRequestWriter(protocol.ReqGetStats)
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return model.TaskStats{}, err
	}
	return protocol.ReadStats(r)
}

// GetTasksByStates lists brief info for every task in one of states. Fails
// if the server holds more than MAX_STATUS_TASKS tasks total.
func (c *Client) GetTasksByStates(states []model.TaskState) ([]model.TaskBriefInfo, error) {
	w := protocol.NewRequestWriter(protocol.ReqGetTasksByStates)
	for _, s := range states {
		w.WriteU8(uint8(s))
	}
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return nil, err
	}
	var out []model.TaskBriefInfo
	for !r.Done() {
		info, err := protocol.ReadBriefInfo(r)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Create enqueues a new task and returns its assigned ID.
func (c *Client) Create(info model.TaskCreateInfo) (model.TaskID, error) {
	w := protocol.NewRequestWriter(protocol.ReqCreate)
	protocol.WriteCreateInfo(w, info)
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return 0, err
	}
	id, err := r.ReadU64()
	return model.TaskID(id), err
}

// TakeToRun requests the next pending task matching myTags. ErrFailed
// indicates no eligible task was available right now.
func (c *Client) TakeToRun(myTags []string) (model.TaskRunInfo, error) {
	w := protocol.NewRequestWriter(protocol.ReqTakeToRun)
	for _, tag := range myTags {
		w.WriteString(tag)
	}
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return model.TaskRunInfo{}, err
	}
	return protocol.ReadRunInfo(r)
}

// HeartbeatAndCheckWasTaskCanceled bumps the task's heartbeat and reports
// whether it has been marked for cancellation.
func (c *Client) HeartbeatAndCheckWasTaskCanceled(id model.TaskID) (bool, error) {
	w := protocol.NewRequestWriter(protocol.ReqHeartbeatAndCheckWasTaskCanceled)
	w.WriteU64(uint64(id))
	t, r, err := c.call(w)
	if err := replyErr(t, err); err != nil {
		return false, err
	}
	return r.ReadBool()
}

// MarkFinished reports that the worker's task has completed.
func (c *Client) MarkFinished(id model.TaskID) error {
	w := protocol.NewRequestWriter(protocol.ReqMarkFinished)
	w.WriteU64(uint64(id))
	t, _, err := c.call(w)
	return replyErr(t, err)
}

// MarkShouldCancel requests cancellation of a running task.
func (c *Client) MarkShouldCancel(id model.TaskID) error {
	w := protocol.NewRequestWriter(protocol.ReqMarkShouldCancel)
	w.WriteU64(uint64(id))
	t, _, err := c.call(w)
	return replyErr(t, err)
}
