package controller

import (
	"io"
	"time"

	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/saucerun/ssgcore/internal/transport"
)

// Conn is the minimal line transport the loop needs: read one line (sans
// trailing newline, blocking until one arrives or the timeout elapses) and
// write one line. internal/transport's websocket and in-memory
// implementations both satisfy it.
type Conn interface {
	ReadLine(timeout time.Duration) (string, error)
	WriteLine(s string) error
}

// Run is the controller's real-wall-clock main loop (spec §5): service one
// unit of input, advance state, then wait — where "wait" means blocking on
// the transport with a short deadline rather than blocking on a simulated
// event channel, since there is a real clock to drive telemetry and the
// heartbeat watchdog even when no line arrives.
//
// Run blocks until the peer disconnects, a read fails with an error other
// than a timeout, or a write fails; on return it ensures the pump is off
// (spec §4.4).
func Run(c *Controller, conn Conn, pollInterval time.Duration) error {
	defer c.Disconnect()

	now := time.Now()
	telemetry := NewTelemetryTicker(c.cfg.TelemetryInterval, now)

	for {
		line, err := conn.ReadLine(pollInterval)
		now = time.Now()
		switch {
		case err == nil:
			parsed, perr := ssg.ParseLine(line)
			var reply ssg.Reply
			if perr != nil {
				c.log.Warn().Str("state", c.state.String()).Msg("unparseable line")
				reply = ssg.ErrReply{Code: ssg.CodePARSE}
			} else {
				reply = c.Accept(parsed, now)
			}
			if werr := conn.WriteLine(reply.String()); werr != nil {
				return werr
			}
		case transport.IsTimeout(err):
			// no line this tick; fall through to housekeeping below
		case transport.IsClosed(err) || err == io.EOF:
			c.log.Info().Str("state", c.state.String()).Int("q", c.QueueDepth()).Msg("connection closed")
			return nil
		default:
			c.log.Warn().Err(err).Str("state", c.state.String()).Msg("read error, loop exiting")
			return err
		}

		c.Tick(now)
		for _, f := range c.DrainAsyncFaults() {
			if werr := conn.WriteLine(f.String()); werr != nil {
				return werr
			}
		}
		if telemetry.Due(now) {
			if werr := conn.WriteLine(c.Telemetry().String()); werr != nil {
				return werr
			}
		}
	}
}
