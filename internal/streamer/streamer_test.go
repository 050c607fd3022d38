package streamer

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/saucerun/ssgcore/internal/transport"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AckTimeout = 40 * time.Millisecond
	cfg.BusyBackoff = 5 * time.Millisecond
	cfg.PollInterval = 2 * time.Millisecond
	cfg.DrainTimeout = 50 * time.Millisecond
	return cfg
}

func seqLines(n int) []ssg.Line {
	lines := make([]ssg.Line, n)
	for i := range lines {
		lines[i] = ssg.Line{Seq: uint64(i + 1), SeqGiven: true, Op: ssg.OpHome}
	}
	return lines
}

// ackEverything is a fake controller that acks every line it reads in order.
func ackEverything(t *testing.T, conn *transport.Pipe, done <-chan struct{}) {
	t.Helper()
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			line, err := conn.ReadLine(5 * time.Millisecond)
			if err != nil {
				continue
			}
			parsed, perr := ssg.ParseLine(line)
			if perr != nil {
				continue
			}
			conn.WriteLine(ssg.Ack{Seq: parsed.Seq}.String())
		}
	}()
}

func TestStreamerAcksAllLines(t *testing.T) {
	hostEnd, ctlEnd := transport.NewPipe()
	done := make(chan struct{})
	defer close(done)
	ackEverything(t, ctlEnd, done)

	s := New(seqLines(50), hostEnd, testConfig(), zerolog.Nop())
	var progress []Progress
	go func() {
		for p := range s.Progress() {
			progress = append(progress, p)
		}
	}()

	err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	require.Equal(t, JobDone, last.State)
	require.Equal(t, 50, last.LinesAcked)
}

func TestStreamerWindowBound(t *testing.T) {
	hostEnd, ctlEnd := transport.NewPipe()
	cfg := testConfig()
	cfg.Window = 4
	lines := seqLines(20)
	s := New(lines, hostEnd, cfg, zerolog.Nop())

	resultCh := make(chan error, 1)
	go func() { resultCh <- s.Run(context.Background()) }()

	// Read exactly Window lines without acking any; the streamer must not
	// send a 5th until one is acked (spec §4.6 step 2, invariant §8.7).
	seen := 0
	for seen < cfg.Window {
		if _, err := ctlEnd.ReadLine(200 * time.Millisecond); err == nil {
			seen++
		}
	}
	_, err := ctlEnd.ReadLine(30 * time.Millisecond)
	require.True(t, transport.IsTimeout(err), "streamer sent beyond its window before any ack")

	// Ack one, then exactly one more line should appear.
	ctlEnd.WriteLine(ssg.Ack{Seq: 1}.String())
	_, err = ctlEnd.ReadLine(200 * time.Millisecond)
	require.NoError(t, err)

	for range lines {
		ctlEnd.ReadLine(5 * time.Millisecond)
	}
	for i := 2; i <= len(lines); i++ {
		ctlEnd.WriteLine(ssg.Ack{Seq: uint64(i)}.String())
	}
	require.NoError(t, <-resultCh)
}

func TestStreamerGapTriggersResend(t *testing.T) {
	hostEnd, ctlEnd := transport.NewPipe()
	lines := seqLines(3)
	s := New(lines, hostEnd, testConfig(), zerolog.Nop())

	resultCh := make(chan error, 1)
	go func() { resultCh <- s.Run(context.Background()) }()

	// Drain the three sent lines, ack only N1, then report a gap at N3.
	for i := 0; i < 3; i++ {
		_, err := ctlEnd.ReadLine(200 * time.Millisecond)
		require.NoError(t, err)
	}
	ctlEnd.WriteLine(ssg.Ack{Seq: 1}.String())
	ctlEnd.WriteLine(ssg.ErrReply{Seq: 3, HasSeq: true, Code: ssg.CodeGAP}.String())

	// The streamer must resend N2 (still in-flight, seq <= 3).
	resent, err := ctlEnd.ReadLine(200 * time.Millisecond)
	require.NoError(t, err)
	parsed, perr := ssg.ParseLine(resent)
	require.NoError(t, perr)
	require.LessOrEqual(t, parsed.Seq, uint64(3))

	ctlEnd.WriteLine(ssg.Ack{Seq: 2}.String())
	ctlEnd.WriteLine(ssg.Ack{Seq: 3}.String())
	require.NoError(t, <-resultCh)
}

func TestStreamerFatalCodeEscalates(t *testing.T) {
	hostEnd, ctlEnd := transport.NewPipe()
	lines := seqLines(2)
	s := New(lines, hostEnd, testConfig(), zerolog.Nop())

	resultCh := make(chan error, 1)
	go func() { resultCh <- s.Run(context.Background()) }()

	_, err := ctlEnd.ReadLine(200 * time.Millisecond)
	require.NoError(t, err)
	ctlEnd.WriteLine(ssg.ErrReply{Seq: 1, HasSeq: true, Code: ssg.CodeLIMIT}.String())

	err = <-resultCh
	require.Error(t, err)
	var fatal *Fatal
	require.ErrorAs(t, err, &fatal)
	require.Equal(t, ssg.CodeLIMIT, fatal.Code)
}

func TestStreamerAckTimeoutRetriesThenFails(t *testing.T) {
	hostEnd, _ := transport.NewPipe()
	cfg := testConfig()
	cfg.MaxRetries = 1
	lines := seqLines(1)
	s := New(lines, hostEnd, cfg, zerolog.Nop())

	// Nobody ever acks; the streamer must retry MaxRetries times then fail.
	err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrStreamFail)
}

func TestStreamerResumeParsesLastAck(t *testing.T) {
	hostEnd, ctlEnd := transport.NewPipe()
	s := New(seqLines(1), hostEnd, testConfig(), zerolog.Nop())

	go func() {
		line, err := ctlEnd.ReadLine(200 * time.Millisecond)
		require.NoError(t, err)
		parsed, perr := ssg.ParseLine(line)
		require.NoError(t, perr)
		require.Equal(t, ssg.OpReportStatus, parsed.Op)
		require.False(t, parsed.SeqGiven)
		ctlEnd.WriteLine(ssg.StatusReply{State: "Printing", Q: 0, Flow: 0, Sauce: false, LastAck: 40}.String())
	}()

	next, err := s.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(41), next)
}
