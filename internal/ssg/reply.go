package ssg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Reply is one of the six controller-to-host reply shapes (spec §6).
type Reply interface {
	String() string
	isReply()
}

// Ack is "ok N<seq>": the command was accepted (queued or, for immediate
// commands, execution has begun).
type Ack struct {
	Seq uint64
}

func (a Ack) String() string { return fmt.Sprintf("ok N%d", a.Seq) }
func (Ack) isReply()         {}

// ErrReply is "err [N<seq>] code=<kind>". HasSeq is false for asynchronous
// faults (endstop hit, limit violation mid-move, heartbeat timeout), which
// carry no originating sequence number.
type ErrReply struct {
	Seq     uint64
	HasSeq  bool
	Code    Code
}

func (e ErrReply) String() string {
	if e.HasSeq {
		return fmt.Sprintf("err N%d code=%s", e.Seq, e.Code)
	}
	return fmt.Sprintf("err code=%s", e.Code)
}
func (ErrReply) isReply() {}

// Busy is "busy q=<depth> state=<name>": the queue is full, resend later.
type Busy struct {
	Q     int
	State string
}

func (b Busy) String() string { return fmt.Sprintf("busy q=%d state=%s", b.Q, b.State) }
func (Busy) isReply()         {}

// TelemetryPos is the nested position object of an unsolicited telemetry
// frame.
type TelemetryPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Telemetry is the unsolicited ~1Hz frame (spec §4.1 "Telemetry cadence").
type Telemetry struct {
	Pos   TelemetryPos `json:"pos"`
	Flow  int          `json:"flow"`
	Q     int          `json:"q"`
	State string       `json:"state"`
}

func (t Telemetry) String() string {
	b, _ := json.Marshal(t)
	return "telemetry " + string(b)
}
func (Telemetry) isReply() {}

// PosReply is the M114 reply: "pos X:<n> Y:<n>".
type PosReply struct {
	X, Y float64
}

func (p PosReply) String() string {
	return fmt.Sprintf("pos X:%s Y:%s", formatNumber(p.X), formatNumber(p.Y))
}
func (PosReply) isReply() {}

// StatusReply is the M408 reply. LastAck is this repo's extension (see
// SPEC_FULL.md "M408 status-with-last-ack extension") used by the streamer
// to resume after a disconnect without scanning telemetry history.
type StatusReply struct {
	State   string
	Q       int
	Flow    int
	Sauce   bool
	LastAck uint64
}

func (s StatusReply) String() string {
	sauce := "OFF"
	if s.Sauce {
		sauce = "ON"
	}
	return fmt.Sprintf("status state=%s q=%d flow=%d sauce=%s last_ack=%d",
		s.State, s.Q, s.Flow, sauce, s.LastAck)
}
func (StatusReply) isReply() {}

// ParseReply parses one controller->host reply line.
func ParseReply(s string) (Reply, error) {
	switch {
	case strings.HasPrefix(s, "ok N"):
		n, err := strconv.ParseUint(strings.TrimPrefix(s, "ok N"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ssg: %w: bad ok reply %q", errParse, s)
		}
		return Ack{Seq: n}, nil

	case strings.HasPrefix(s, "err"):
		return parseErrReply(s)

	case strings.HasPrefix(s, "busy "):
		return parseBusy(s)

	case strings.HasPrefix(s, "telemetry "):
		var t Telemetry
		if err := json.Unmarshal([]byte(strings.TrimPrefix(s, "telemetry ")), &t); err != nil {
			return nil, fmt.Errorf("ssg: %w: bad telemetry json: %v", errParse, err)
		}
		return t, nil

	case strings.HasPrefix(s, "pos "):
		return parsePos(s)

	case strings.HasPrefix(s, "status "):
		return parseStatus(s)
	}
	return nil, fmt.Errorf("ssg: %w: unrecognized reply %q", errParse, s)
}

func parseErrReply(s string) (Reply, error) {
	fields := strings.Fields(s)
	var e ErrReply
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "N"):
			n, err := strconv.ParseUint(f[1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad err seq %q", errParse, s)
			}
			e.Seq = n
			e.HasSeq = true
		case strings.HasPrefix(f, "code="):
			e.Code = Code(strings.TrimPrefix(f, "code="))
		}
	}
	if e.Code == "" {
		return nil, fmt.Errorf("ssg: %w: err reply missing code %q", errParse, s)
	}
	return e, nil
}

func parseBusy(s string) (Reply, error) {
	fields := strings.Fields(s)
	var b Busy
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "q="):
			n, err := strconv.Atoi(strings.TrimPrefix(f, "q="))
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad busy q %q", errParse, s)
			}
			b.Q = n
		case strings.HasPrefix(f, "state="):
			b.State = strings.TrimPrefix(f, "state=")
		}
	}
	return b, nil
}

func parsePos(s string) (Reply, error) {
	fields := strings.Fields(s)
	var p PosReply
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "X:"):
			x, err := strconv.ParseFloat(strings.TrimPrefix(f, "X:"), 64)
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad pos X %q", errParse, s)
			}
			p.X = x
		case strings.HasPrefix(f, "Y:"):
			y, err := strconv.ParseFloat(strings.TrimPrefix(f, "Y:"), 64)
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad pos Y %q", errParse, s)
			}
			p.Y = y
		}
	}
	return p, nil
}

func parseStatus(s string) (Reply, error) {
	fields := strings.Fields(s)
	var st StatusReply
	for _, f := range fields[1:] {
		switch {
		case strings.HasPrefix(f, "state="):
			st.State = strings.TrimPrefix(f, "state=")
		case strings.HasPrefix(f, "q="):
			n, err := strconv.Atoi(strings.TrimPrefix(f, "q="))
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad status q %q", errParse, s)
			}
			st.Q = n
		case strings.HasPrefix(f, "flow="):
			n, err := strconv.Atoi(strings.TrimPrefix(f, "flow="))
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad status flow %q", errParse, s)
			}
			st.Flow = n
		case strings.HasPrefix(f, "sauce="):
			st.Sauce = strings.TrimPrefix(f, "sauce=") == "ON"
		case strings.HasPrefix(f, "last_ack="):
			n, err := strconv.ParseUint(strings.TrimPrefix(f, "last_ack="), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ssg: %w: bad status last_ack %q", errParse, s)
			}
			st.LastAck = n
		}
	}
	return st, nil
}
