package protocol

import (
	"github.com/judnich/Kickoff/internal/wire"
	"github.com/judnich/Kickoff/model"
)

func writeTagSet(w *wire.Writer, tags model.TaskSchedule, optional bool) {
	var s []string
	if optional {
		s = tags.OptionalSlice()
	} else {
		s = tags.RequiredSlice()
	}
	w.WriteI32(int32(len(s)))
	for _, tag := range s {
		w.WriteString(tag)
	}
}

func readTagSet(r *wire.Reader) ([]string, error) {
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, wire.ErrTruncated
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// WriteSchedule encodes required then optional resource tags, each as an
// i32 count followed by that many length-prefixed strings.
func WriteSchedule(w *wire.Writer, s model.TaskSchedule) {
	writeTagSet(w, s, false)
	writeTagSet(w, s, true)
}

// ReadSchedule is the inverse of WriteSchedule.
func ReadSchedule(r *wire.Reader) (model.TaskSchedule, error) {
	required, err := readTagSet(r)
	if err != nil {
		return model.TaskSchedule{}, err
	}
	optional, err := readTagSet(r)
	if err != nil {
		return model.TaskSchedule{}, err
	}
	return model.NewTaskSchedule(required, optional), nil
}

// WriteStatus encodes createTime followed by an explicit hasValue bool and,
// if true, the runStatus payload — a tagged-sum encoding rather than a
// nullable one.
func WriteStatus(w *wire.Writer, s model.TaskStatus) {
	w.WriteI64(s.CreateTime.Unix())
	w.WriteBool(s.RunStatus != nil)
	if s.RunStatus != nil {
		w.WriteBool(s.RunStatus.WasCanceled)
		w.WriteI64(s.RunStatus.StartTime.Unix())
		w.WriteI64(s.RunStatus.HeartbeatTime.Unix())
	}
}

// ReadStatus is the inverse of WriteStatus.
func ReadStatus(r *wire.Reader) (model.TaskStatus, error) {
	createUnix, err := r.ReadI64()
	if err != nil {
		return model.TaskStatus{}, err
	}
	has, err := r.ReadBool()
	if err != nil {
		return model.TaskStatus{}, err
	}
	st := model.TaskStatus{CreateTime: unixTime(createUnix)}
	if has {
		wasCanceled, err := r.ReadBool()
		if err != nil {
			return model.TaskStatus{}, err
		}
		startUnix, err := r.ReadI64()
		if err != nil {
			return model.TaskStatus{}, err
		}
		hbUnix, err := r.ReadI64()
		if err != nil {
			return model.TaskStatus{}, err
		}
		st.RunStatus = &model.TaskRunStatus{
			WasCanceled:   wasCanceled,
			StartTime:     unixTime(startUnix),
			HeartbeatTime: unixTime(hbUnix),
		}
	}
	return st, nil
}

// WriteBriefInfo encodes a TaskBriefInfo: id, state tag, then full status.
func WriteBriefInfo(w *wire.Writer, info model.TaskBriefInfo) {
	w.WriteU64(uint64(info.ID))
	w.WriteU8(uint8(info.Status.State()))
	WriteStatus(w, info.Status)
}

// ReadBriefInfo is the inverse of WriteBriefInfo. The state byte is
// redundant with Status.State() on the wire but is read and discarded so
// the layout matches what was written.
func ReadBriefInfo(r *wire.Reader) (model.TaskBriefInfo, error) {
	id, err := r.ReadU64()
	if err != nil {
		return model.TaskBriefInfo{}, err
	}
	if _, err := r.ReadU8(); err != nil {
		return model.TaskBriefInfo{}, err
	}
	status, err := ReadStatus(r)
	if err != nil {
		return model.TaskBriefInfo{}, err
	}
	return model.TaskBriefInfo{ID: model.TaskID(id), Status: status}, nil
}

// WriteRunInfo encodes what a worker receives from a successful TakeToRun.
func WriteRunInfo(w *wire.Writer, info model.TaskRunInfo) {
	w.WriteU64(uint64(info.ID))
	w.WriteString(info.Command)
}

// ReadRunInfo is the inverse of WriteRunInfo.
func ReadRunInfo(r *wire.Reader) (model.TaskRunInfo, error) {
	id, err := r.ReadU64()
	if err != nil {
		return model.TaskRunInfo{}, err
	}
	cmd, err := r.ReadString()
	if err != nil {
		return model.TaskRunInfo{}, err
	}
	return model.TaskRunInfo{ID: model.TaskID(id), Command: cmd}, nil
}

// WriteCreateInfo encodes the Create request payload: command then schedule.
func WriteCreateInfo(w *wire.Writer, info model.TaskCreateInfo) {
	w.WriteString(info.Command)
	WriteSchedule(w, info.Schedule)
}

// ReadCreateInfo is the inverse of WriteCreateInfo.
func ReadCreateInfo(r *wire.Reader) (model.TaskCreateInfo, error) {
	cmd, err := r.ReadString()
	if err != nil {
		return model.TaskCreateInfo{}, err
	}
	sched, err := ReadSchedule(r)
	if err != nil {
		return model.TaskCreateInfo{}, err
	}
	return model.TaskCreateInfo{Command: cmd, Schedule: sched}, nil
}

// WriteStats encodes the four TaskStats counters, in struct field order.
func WriteStats(w *wire.Writer, s model.TaskStats) {
	w.WriteI32(s.NumPending)
	w.WriteI32(s.NumRunning)
	w.WriteI32(s.NumCanceling)
	w.WriteI32(s.NumFinished)
}

// ReadStats is the inverse of WriteStats.
func ReadStats(r *wire.Reader) (model.TaskStats, error) {
	pending, err := r.ReadI32()
	if err != nil {
		return model.TaskStats{}, err
	}
	running, err := r.ReadI32()
	if err != nil {
		return model.TaskStats{}, err
	}
	canceling, err := r.ReadI32()
	if err != nil {
		return model.TaskStats{}, err
	}
	finished, err := r.ReadI32()
	if err != nil {
		return model.TaskStats{}, err
	}
	return model.TaskStats{
		NumPending:   pending,
		NumRunning:   running,
		NumCanceling: canceling,
		NumFinished:  finished,
	}, nil
}
