// Package streamer implements the host-side sliding-window send engine
// (spec §4.6, C8): it transmits compiled SSG lines under a bounded
// in-flight window, tracks acks, retries on timeout, resends on GAP,
// backs off on busy, and resumes after a reconnect. Its event-loop shape
// mirrors internal/controller's Run: service the transport, advance
// state, repeat, the same event-loop shape that motivated the
// controller's loop.
package streamer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/saucerun/ssgcore/internal/transport"
)

// Conn is the transport boundary the streamer needs, structurally
// identical to internal/controller's Conn so internal/transport's
// implementations satisfy both without either package importing the
// other.
type Conn interface {
	ReadLine(timeout time.Duration) (string, error)
	WriteLine(line string) error
}

// Config bounds and tunables for a streaming job (spec §4.6 defaults).
type Config struct {
	Window      int
	AckTimeout  time.Duration
	MaxRetries  int
	BusyBackoff time.Duration
	DrainTimeout time.Duration
	PollInterval time.Duration
}

// DefaultConfig matches spec §4.6's stated defaults.
func DefaultConfig() Config {
	return Config{
		Window:       32,
		AckTimeout:   250 * time.Millisecond,
		MaxRetries:   3,
		BusyBackoff:  50 * time.Millisecond,
		DrainTimeout: time.Second,
		PollInterval: 20 * time.Millisecond,
	}
}

// JobState is the coarse lifecycle of one streaming job, reported on the
// Progress channel (SPEC_FULL.md "Progress channel typed events").
type JobState string

const (
	JobRunning   JobState = "running"
	JobDone      JobState = "done"
	JobFailed    JobState = "failed"
	JobCanceled  JobState = "canceled"
)

// Progress is one snapshot of job counters, delivered on a <-chan Progress
// for UI consumption (spec §4.6 "Progress").
type Progress struct {
	JobID      uuid.UUID
	LinesSent  int
	LinesAcked int
	Retries    int
	Failures   int
	State      JobState
}

// Fatal holds the code from a controller reply the streamer cannot
// recover from on its own (spec §7 "Surfaced, fatal for job"). ErrStreamFail
// is returned instead when the streamer itself exhausts ack retries.
type Fatal struct {
	Code ssg.Code
	Seq  uint64
}

func (f *Fatal) Error() string {
	return fmt.Sprintf("streamer: controller reported fatal code=%s (seq %d)", f.Code, f.Seq)
}

// ErrStreamFail is returned when an in-flight line's retry count exceeds
// Config.MaxRetries (spec §4.6 step 4, §7 "Surfaced, fatal for stream").
var ErrStreamFail = errors.New("streamer: ack retries exhausted")

type inflight struct {
	line      ssg.Line
	firstSend time.Time
	retries   int
}

// Streamer drives one compiled line sequence over conn under the sliding
// window protocol. A Streamer is single-use: construct one per job.
type Streamer struct {
	cfg      Config
	conn     Conn
	log      zerolog.Logger
	lines    []ssg.Line
	bySeq    map[uint64]ssg.Line
	jobID    uuid.UUID
	progress chan Progress
	jitter   *backoffJitter
}

// New returns a Streamer ready to run lines (compiler.Compile's output,
// already sequenced starting at 1) over conn.
func New(lines []ssg.Line, conn Conn, cfg Config, log zerolog.Logger) *Streamer {
	bySeq := make(map[uint64]ssg.Line, len(lines))
	for _, l := range lines {
		bySeq[l.Seq] = l
	}
	jobID := uuid.New()
	return &Streamer{
		cfg:      cfg,
		conn:     conn,
		log:      log,
		lines:    lines,
		bySeq:    bySeq,
		jobID:    jobID,
		progress: make(chan Progress, 16),
		jitter:   newBackoffJitter(binary.LittleEndian.Uint64(jobID[:8])),
	}
}

// Progress returns the channel progress snapshots are delivered on. It is
// closed when Run returns. Snapshots are sent without blocking: a snapshot
// that finds the channel's buffer full is dropped.
func (s *Streamer) Progress() <-chan Progress {
	return s.progress
}

// JobID returns the job correlation ID (SPEC_FULL.md "Progress channel
// typed events").
func (s *Streamer) JobID() uuid.UUID {
	return s.jobID
}

// Resume queries M408 as an out-of-band (N0) probe and returns the
// sequence to resume from: LastAck+1 (spec §4.6 "Resume", SPEC_FULL.md
// "M408 status-with-last-ack extension"). The query is sent with no
// sequence token, which spec §3 reserves for commands that "skip sequence
// validation" — exactly what a reconnecting host needs, since it does not
// know the controller's expected_next_seq yet.
func (s *Streamer) Resume(ctx context.Context) (uint64, error) {
	if err := s.conn.WriteLine(ssg.Line{Op: ssg.OpReportStatus}.String()); err != nil {
		return 0, err
	}
	deadline := time.Now().Add(s.cfg.AckTimeout * time.Duration(s.cfg.MaxRetries+1))
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		line, err := s.conn.ReadLine(s.cfg.PollInterval)
		if err != nil {
			if transport.IsTimeout(err) {
				continue
			}
			return 0, err
		}
		reply, perr := ssg.ParseReply(line)
		if perr != nil {
			continue
		}
		if st, ok := reply.(ssg.StatusReply); ok {
			return st.LastAck + 1, nil
		}
	}
	return 0, fmt.Errorf("streamer: no status reply within resume window")
}

// Run streams every line starting from the beginning, for a fresh job
// with no prior progress. Use RunFrom after Resume.
func (s *Streamer) Run(ctx context.Context) error {
	return s.RunFrom(ctx, 1)
}

// RunFrom streams s.lines starting at startSeq (Resume's result, or 1 for
// a fresh job) until every remaining line is acked, the job fails, or ctx
// is canceled. On cancellation the streamer stops sending immediately and
// drains acks for up to Config.DrainTimeout (spec §5 "Cancellation &
// timeouts") before returning ctx.Err().
func (s *Streamer) RunFrom(ctx context.Context, startSeq uint64) error {
	defer close(s.progress)
	return s.run(ctx, make(map[uint64]*inflight), firstSeqAtOrAfter(s.lines, startSeq))
}

func firstSeqAtOrAfter(lines []ssg.Line, start uint64) int {
	for i, l := range lines {
		if l.Seq >= start {
			return i
		}
	}
	return len(lines)
}

func (s *Streamer) run(ctx context.Context, window map[uint64]*inflight, nextIdx int) error {
	sent, acked, retries, failures := 0, 0, 0, 0
	var busyUntil time.Time
	emit := func(st JobState) {
		select {
		case s.progress <- Progress{JobID: s.jobID, LinesSent: sent, LinesAcked: acked, Retries: retries, Failures: failures, State: st}:
		default:
			// Buffer full: drop this snapshot rather than stall the send loop.
		}
	}

	fail := func(err error) error {
		failures++
		emit(JobFailed)
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return s.drainOnCancel(ctx, window, &acked)
		default:
		}

		now := time.Now()
		for len(window) < s.cfg.Window && nextIdx < len(s.lines) && now.After(busyUntil) {
			l := s.lines[nextIdx]
			if err := s.conn.WriteLine(l.String()); err != nil {
				return fail(err)
			}
			window[l.Seq] = &inflight{line: l, firstSend: now}
			sent++
			nextIdx++
		}

		if len(window) == 0 && nextIdx >= len(s.lines) {
			emit(JobDone)
			return nil
		}

		line, err := s.conn.ReadLine(s.cfg.PollInterval)
		switch {
		case err == nil:
			reply, perr := ssg.ParseReply(line)
			if perr != nil {
				s.log.Warn().Str("line", line).Msg("streamer: unparseable reply ignored")
				break
			}
			switch r := reply.(type) {
			case ssg.Ack:
				delete(window, r.Seq)
				acked++
			case ssg.Busy:
				busyUntil = time.Now().Add(s.cfg.BusyBackoff + s.jitter.next(s.cfg.BusyBackoff))
			case ssg.ErrReply:
				if r.Code == ssg.CodeGAP {
					s.resendThrough(window, r.Seq)
					retries++
					break
				}
				return fail(&Fatal{Code: r.Code, Seq: r.Seq})
			case ssg.Telemetry, ssg.PosReply, ssg.StatusReply:
				// unsolicited/out-of-band frames arriving mid-stream; not
				// part of the ack protocol, ignored here.
			}
		case transport.IsTimeout(err):
			// fall through to ack-timeout sweep below
		default:
			return fail(err)
		}

		for seq, e := range window {
			if now.Sub(e.firstSend) <= s.cfg.AckTimeout {
				continue
			}
			if e.retries >= s.cfg.MaxRetries {
				return fail(ErrStreamFail)
			}
			if werr := s.conn.WriteLine(e.line.String()); werr != nil {
				return fail(werr)
			}
			e.firstSend = time.Now()
			e.retries++
			retries++
			_ = seq
		}

		emit(JobRunning)
	}
}

// resendThrough resends every still-in-flight line with seq <= gapSeq
// (spec §4.6 step 3 "resend any line in [...] that sits in the window; at
// minimum, resend s and all with smaller seq still in-flight").
func (s *Streamer) resendThrough(window map[uint64]*inflight, gapSeq uint64) {
	for seq, e := range window {
		if seq > gapSeq {
			continue
		}
		if err := s.conn.WriteLine(e.line.String()); err == nil {
			e.firstSend = time.Now()
			e.retries++
		}
	}
	if line, ok := s.bySeq[gapSeq]; ok {
		if _, inWindow := window[gapSeq]; !inWindow {
			window[gapSeq] = &inflight{line: line, firstSend: time.Now()}
			s.conn.WriteLine(line.String())
		}
	}
}

// drainOnCancel stops sending and waits up to Config.DrainTimeout for
// remaining in-flight lines to ack (spec §5 "in-flight lines may still be
// acked and are drained for up to T_drain").
func (s *Streamer) drainOnCancel(ctx context.Context, window map[uint64]*inflight, acked *int) error {
	deadline := time.Now().Add(s.cfg.DrainTimeout)
	for len(window) > 0 && time.Now().Before(deadline) {
		line, err := s.conn.ReadLine(s.cfg.PollInterval)
		if err != nil {
			break
		}
		if reply, perr := ssg.ParseReply(line); perr == nil {
			if ack, ok := reply.(ssg.Ack); ok {
				delete(window, ack.Seq)
				*acked++
			}
		}
	}
	select {
	case s.progress <- Progress{JobID: s.jobID, LinesAcked: *acked, State: JobCanceled}:
	default:
	}
	return ctx.Err()
}
