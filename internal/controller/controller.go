package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/saucerun/ssgcore/internal/motion"
	"github.com/saucerun/ssgcore/internal/queue"
	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/saucerun/ssgcore/internal/units"
)

// Controller owns all controller-side mutable state and is passed by
// reference to every handler, per spec §9 ("Global mutable state"): there
// is exactly one current_state and one position-per-axis, and both live
// here rather than behind package-level vars, so the state machine can be
// unit tested against simulated IO.
type Controller struct {
	cfg   Config
	log   zerolog.Logger
	state State

	seq   *SequenceTracker
	queue *queue.Queue[ssg.Line]

	axisX, axisY     *motion.Axis
	io               motion.StepDirIO
	endstopX, endstopY motion.Endstop
	homePoll         func() bool

	pumpOn   bool
	pumpDuty int

	lastCommandAt time.Time
	dwellUntil    time.Time

	// activeSeg is the segment currently being stepped through, and
	// segStart is the wall-clock instant it began (spec §4.3: trapezoidal
	// profile over time, not an instantaneous jump). Tick advances it by
	// elapsed time each call; nil means the planner is idle and the next
	// queued line (if any) can be dequeued and planned.
	activeSeg *motion.Segment
	segStart  time.Time

	// asyncFaults holds faults the loop must flush as unsolicited `err`
	// replies (endstop-during-print, heartbeat timeout): spec §4.1 "err
	// code=<kind> — asynchronous fault", which carries no seq.
	asyncFaults []ssg.ErrReply
}

// New returns a Controller in StateBoot, immediately transitioned to Idle
// (nothing else to boot in this simulation-only implementation).
func New(cfg Config, io motion.StepDirIO, endstopX, endstopY motion.Endstop, log zerolog.Logger) *Controller {
	c := &Controller{
		cfg:      cfg,
		log:      log,
		state:    StateIdle,
		seq:      NewSequenceTracker(),
		queue:    queue.New[ssg.Line](cfg.QueueCapacity),
		axisX:    motion.NewAxis("X", cfg.AxisX.StepsPerMM, cfg.AxisX.MaxSpeed, cfg.AxisX.MaxAccel, cfg.AxisX.SoftMin, cfg.AxisX.SoftMax),
		axisY:    motion.NewAxis("Y", cfg.AxisY.StepsPerMM, cfg.AxisY.MaxSpeed, cfg.AxisY.MaxAccel, cfg.AxisY.SoftMin, cfg.AxisY.SoftMax),
		io:       io,
		endstopX: endstopX,
		endstopY: endstopY,
	}
	return c
}

// SetHomePoll overrides the poll function homing uses to wait between
// endstop reads; tests use this to drive homing deterministically without
// real time passing. When nil, a default real-time poll is used.
func (c *Controller) SetHomePoll(poll func() bool) {
	c.homePoll = poll
}

func (c *Controller) defaultPoll() bool {
	time.Sleep(time.Millisecond)
	return true
}

func (c *Controller) poll() bool {
	if c.homePoll != nil {
		return c.homePoll()
	}
	return c.defaultPoll()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State { return c.state }

// QueueDepth returns the current command queue depth.
func (c *Controller) QueueDepth() int { return c.queue.Len() }

// PumpDuty returns the current pump PWM duty (0 when off).
func (c *Controller) PumpDuty() int {
	if !c.pumpOn {
		return 0
	}
	return c.pumpDuty
}

// Position returns the current axis positions.
func (c *Controller) Position() units.Point {
	return units.Point{X: c.axisX.PosMM(), Y: c.axisY.PosMM()}
}

// LastAcked returns the sequence tracker's last-acked sequence number, used
// by the M408 status reply's last_ack extension (SPEC_FULL.md).
func (c *Controller) LastAcked() uint64 {
	return c.seq.LastAcked()
}

// DrainAsyncFaults removes and returns any buffered asynchronous fault
// replies, for the loop to flush onto the transport.
func (c *Controller) DrainAsyncFaults() []ssg.ErrReply {
	f := c.asyncFaults
	c.asyncFaults = nil
	return f
}

func (c *Controller) setPumpOff() {
	c.pumpOn = false
	c.pumpDuty = 0
	c.io.SetPumpDuty(0)
}

// Accept processes one incoming SSG line against the controller's current
// state and returns the reply to send back. now is the wall-clock instant
// the line was received (injected so tests are deterministic; production
// callers pass time.Now()).
//
// Gate order is fixed by spec §4.2: (a) sequence check, (b) legality in
// current state, (c) soft-limit check for motion targets, (d) queue space.
func (c *Controller) Accept(line ssg.Line, now time.Time) ssg.Reply {
	if line.Op == ssg.OpHome {
		return c.acceptHome(line, now)
	}

	if !line.OutOfBand() {
		switch c.seq.Check(line.Seq) {
		case SeqDuplicate:
			// Idempotent: re-emit ok without re-executing (spec §4.1 step 1).
			return ssg.Ack{Seq: line.Seq}
		case SeqGap:
			return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeGAP}
		}
	}

	if line.Op.Motion() {
		return c.acceptMotion(line, now)
	}
	switch line.Op {
	case ssg.OpFlowOn:
		return c.acceptFlowOn(line, now)
	case ssg.OpFlowOff:
		return c.acceptFlowOff(line, now)
	case ssg.OpReportPos:
		return c.acceptCommon(line, now, func() ssg.Reply {
			p := c.Position()
			return ssg.PosReply{X: float64(p.X), Y: float64(p.Y)}
		})
	case ssg.OpReportStatus:
		return c.acceptCommon(line, now, func() ssg.Reply {
			return ssg.StatusReply{
				State:   c.state.String(),
				Q:       c.queue.Len(),
				Flow:    c.PumpDuty(),
				Sauce:   c.pumpOn,
				LastAck: c.seq.LastAcked(),
			}
		})
	}
	return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodePARSE}
}

// acceptCommon advances the sequence tracker (queries always participate in
// ordinary sequencing) and runs reply, used for op kinds with no state
// restriction of their own (M114/M408).
func (c *Controller) acceptCommon(line ssg.Line, now time.Time, reply func() ssg.Reply) ssg.Reply {
	c.advance(line, now)
	return reply()
}

func (c *Controller) advance(line ssg.Line, now time.Time) {
	if !line.OutOfBand() {
		c.seq.Advance(line.Seq)
	}
	c.lastCommandAt = now
}

func (c *Controller) acceptMotion(line ssg.Line, now time.Time) ssg.Reply {
	if !c.state.motionAllowed() {
		// Homing rejects everything with BUSY_STATE regardless of prior
		// homed-ness (spec §4.2 "While Homing, other commands are
		// rejected with err code=BUSY_STATE"); every other disallowed
		// state distinguishes "never homed" from "homed, but currently
		// unable to accept motion" (spec §8 scenario 4 accepts either
		// NOT_HOMED or BUSY_STATE from Error; this repo reports
		// BUSY_STATE there, see state.go).
		if c.state != StateHoming && !c.state.homed() {
			return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeNOT_HOMED}
		}
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeBUSY_STATE}
	}

	targetX, targetY := c.axisX.PosMM(), c.axisY.PosMM()
	if line.X != nil {
		targetX = units.Millimeters(*line.X)
	}
	if line.Y != nil {
		targetY = units.Millimeters(*line.Y)
	}
	if !c.axisX.WithinLimits(targetX) || !c.axisY.WithinLimits(targetY) {
		c.state = StateError
		c.setPumpOff()
		c.advance(line, now)
		c.log.Warn().Uint64("seq", line.Seq).Str("state", c.state.String()).Int("q", c.queue.Len()).Msg("soft limit violation")
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeLIMIT}
	}

	if c.queue.Full() {
		return ssg.Busy{Q: c.queue.Len(), State: c.state.String()}
	}

	c.advance(line, now)
	c.queue.Enqueue(line)
	if c.state == StateReady {
		c.state = StatePrinting
	}
	ack := ssg.Ack{Seq: line.Seq}
	c.log.Debug().Uint64("seq", line.Seq).Str("state", c.state.String()).Int("q", c.queue.Len()).Msg("motion queued")
	c.advanceMotion(now)
	return ack
}

func (c *Controller) acceptFlowOn(line ssg.Line, now time.Time) ssg.Reply {
	if !c.state.flowOnAllowed() {
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeBUSY_STATE}
	}
	if line.S == nil {
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodePARSE}
	}
	duty := units.Duty(*line.S)
	if !duty.Valid() {
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodePARSE}
	}
	c.advance(line, now)
	c.pumpOn = true
	c.pumpDuty = int(duty)
	c.io.SetPumpDuty(int(duty))
	c.dwellUntil = now.Add(c.cfg.FlowOnDwell)
	return ssg.Ack{Seq: line.Seq}
}

func (c *Controller) acceptFlowOff(line ssg.Line, now time.Time) ssg.Reply {
	c.advance(line, now)
	c.setPumpOff()
	c.dwellUntil = now.Add(c.cfg.FlowOffDwell)
	return ssg.Ack{Seq: line.Seq}
}

func (c *Controller) acceptHome(line ssg.Line, now time.Time) ssg.Reply {
	if !c.state.homeAllowed() {
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeBUSY_STATE}
	}
	c.state = StateHoming
	c.setPumpOff()
	c.queue = queue.New[ssg.Line](c.cfg.QueueCapacity)

	ctx, cancel := context.WithTimeout(context.Background(), motion.HomingTimeout*2)
	defer cancel()
	if err := motion.HomeAxis(ctx, c.axisX, c.endstopX, c.poll); err != nil {
		c.state = StateError
		c.log.Warn().Str("state", c.state.String()).Str("axis", "X").Msg("homing failed")
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeHOMING_FAIL}
	}
	c.io.SetPosition("X", int64(c.axisX.PosSteps()))
	if err := motion.HomeAxis(ctx, c.axisY, c.endstopY, c.poll); err != nil {
		c.state = StateError
		c.log.Warn().Str("state", c.state.String()).Str("axis", "Y").Msg("homing failed")
		return ssg.ErrReply{Seq: line.Seq, HasSeq: true, Code: ssg.CodeHOMING_FAIL}
	}
	c.io.SetPosition("Y", int64(c.axisY.PosSteps()))

	c.seq.Reset()
	c.lastCommandAt = now
	c.state = StateReady
	c.log.Info().Str("state", c.state.String()).Int("q", c.queue.Len()).Msg("homing complete")
	return ssg.Ack{Seq: line.Seq}
}

// advanceMotion steps the planner forward to now: it advances whatever
// segment is in flight by elapsed wall-clock time via PositionAt/Done (spec
// §4.3's trapezoidal accelerate/cruise/decelerate, §5 "tick the planner —
// emit pending step pulses up to 'now'"), and once a segment finishes,
// plans the next queued line and starts timing it from scratch. A command's
// ack still happens the instant it's queued (spec §4.1); this only ever
// moves the axes toward whatever has actually had time to execute, so queue
// depth reflects real lookahead instead of draining instantly.
func (c *Controller) advanceMotion(now time.Time) {
	if now.Before(c.dwellUntil) {
		return
	}
	for {
		if c.activeSeg != nil {
			seg := c.activeSeg
			elapsed := now.Sub(c.segStart).Seconds()
			x, y := seg.PositionAt(elapsed)
			c.axisX.SetPosSteps(x)
			c.axisY.SetPosSteps(y)
			c.io.SetPosition("X", int64(x))
			c.io.SetPosition("Y", int64(y))
			if !seg.Done(elapsed) {
				return
			}
			seg.Apply(c.axisX, c.axisY)
			c.io.SetPosition("X", int64(c.axisX.PosSteps()))
			c.io.SetPosition("Y", int64(c.axisY.PosSteps()))
			c.activeSeg = nil
			c.queue.Dequeue()
			continue
		}

		line, ok := c.queue.Peek()
		if !ok {
			return
		}
		var targetX, targetY units.Millimeters = c.axisX.PosMM(), c.axisY.PosMM()
		if line.X != nil {
			targetX = units.Millimeters(*line.X)
		}
		if line.Y != nil {
			targetY = units.Millimeters(*line.Y)
		}
		var feed *units.FeedRate
		if line.F != nil {
			f := units.FeedRate(*line.F)
			feed = &f
		}
		seg := motion.PlanSegment(c.axisX, c.axisY, targetX, targetY, feed)
		if seg.Duration <= 0 {
			// Already at target (or a zero-length move): nothing to step
			// through, so finish it within this pass rather than leaving a
			// zero-duration segment "active" forever.
			seg.Apply(c.axisX, c.axisY)
			c.io.SetPosition("X", int64(c.axisX.PosSteps()))
			c.io.SetPosition("Y", int64(c.axisY.PosSteps()))
			c.queue.Dequeue()
			continue
		}
		c.activeSeg = &seg
		c.segStart = now
	}
}

// Tick runs time-driven housekeeping that isn't triggered by an incoming
// line: advancing in-flight motion, draining the queue once a flow dwell
// elapses, and the heartbeat watchdog (spec §4.1 "Heartbeat").
func (c *Controller) Tick(now time.Time) {
	c.advanceMotion(now)
	if c.state == StatePrinting && !c.lastCommandAt.IsZero() &&
		now.Sub(c.lastCommandAt) > c.cfg.HeartbeatTimeout {
		c.state = StatePaused
		c.setPumpOff()
		c.log.Warn().Str("state", c.state.String()).Int("q", c.queue.Len()).Msg("heartbeat timeout")
		c.asyncFaults = append(c.asyncFaults, ssg.ErrReply{Code: ssg.CodeHEARTBEAT})
	}
}

// Disconnect forces the pump off, per spec §4.4 ("Client disconnect...
// forces FlowOff within one protocol tick").
func (c *Controller) Disconnect() {
	c.setPumpOff()
}

// Telemetry builds the unsolicited ~1Hz telemetry frame (spec §4.1
// "Telemetry cadence").
func (c *Controller) Telemetry() ssg.Telemetry {
	p := c.Position()
	return ssg.Telemetry{
		Pos:   ssg.TelemetryPos{X: float64(p.X), Y: float64(p.Y)},
		Flow:  c.PumpDuty(),
		Q:     c.queue.Len(),
		State: c.state.String(),
	}
}

// ReportEndstopFault records an asynchronous ENDSTOP fault observed mid
// print (spec §4.4 "Endstop-asserted-during-print is treated as a limit
// fault with code ENDSTOP") and forces a safe, fatal-for-job stop.
func (c *Controller) ReportEndstopFault() {
	c.state = StateError
	c.setPumpOff()
	c.log.Warn().Str("state", c.state.String()).Int("q", c.queue.Len()).Msg("endstop fault during print")
	c.asyncFaults = append(c.asyncFaults, ssg.ErrReply{Code: ssg.CodeENDSTOP})
}
