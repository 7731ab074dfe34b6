package protocol

import "time"

// unixTime rebuilds a wall-clock timestamp from the whole-second Unix value
// carried on the wire. Sub-second precision is never transmitted.
func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
