package ssg

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is one of the seven SSG command opcodes (spec §4.1, §6).
type Op string

const (
	OpRapid  Op = "G0"
	OpDraw   Op = "G1"
	OpHome   Op = "G28"
	OpFlowOn Op = "M3"
	OpFlowOff Op = "M5"
	OpReportPos    Op = "M114"
	OpReportStatus Op = "M408"
)

var validOps = map[Op]bool{
	OpRapid: true, OpDraw: true, OpHome: true,
	OpFlowOn: true, OpFlowOff: true,
	OpReportPos: true, OpReportStatus: true,
}

// Immediate reports whether op is acked after execution begins rather than
// when queued (spec §4.1 "Acknowledgement timing").
func (o Op) Immediate() bool {
	switch o {
	case OpFlowOn, OpFlowOff, OpReportPos, OpReportStatus, OpHome:
		return true
	default:
		return false
	}
}

// Motion reports whether op is a G0/G1 move subject to soft-limit and
// queue-depth acceptance gates.
func (o Op) Motion() bool {
	return o == OpRapid || o == OpDraw
}

// Line is a single parsed SSG command (spec §6 grammar). Seq is meaningful
// only when SeqGiven is true or Seq is nonzero; an omitted seq token is an
// out-of-band N0-class command (spec §3).
type Line struct {
	Seq      uint64
	SeqGiven bool
	Op       Op
	X, Y, F  *float64
	S        *int
}

// OutOfBand reports whether this line skips sequence validation (spec §3:
// "N = 0 is reserved for out-of-band commands").
func (l Line) OutOfBand() bool {
	return l.Seq == 0
}

// ParseLine parses one SSG wire line (without its trailing newline).
func ParseLine(s string) (Line, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Line{}, fmt.Errorf("ssg: %w: empty line", errParse)
	}

	var l Line
	i := 0
	if strings.HasPrefix(fields[0], "N") {
		n, err := strconv.ParseUint(fields[0][1:], 10, 64)
		if err != nil {
			return Line{}, fmt.Errorf("ssg: %w: bad seq token %q", errParse, fields[0])
		}
		l.Seq = n
		l.SeqGiven = true
		i = 1
	}
	if i >= len(fields) {
		return Line{}, fmt.Errorf("ssg: %w: missing op", errParse)
	}
	op := Op(fields[i])
	if !validOps[op] {
		return Line{}, fmt.Errorf("ssg: %w: unknown op %q", errParse, fields[i])
	}
	l.Op = op
	i++

	for ; i < len(fields); i++ {
		tok := fields[i]
		if len(tok) < 2 {
			return Line{}, fmt.Errorf("ssg: %w: bad param %q", errParse, tok)
		}
		key, val := tok[:1], tok[1:]
		switch key {
		case "X":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Line{}, fmt.Errorf("ssg: %w: bad X value %q", errParse, tok)
			}
			l.X = &f
		case "Y":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Line{}, fmt.Errorf("ssg: %w: bad Y value %q", errParse, tok)
			}
			l.Y = &f
		case "F":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Line{}, fmt.Errorf("ssg: %w: bad F value %q", errParse, tok)
			}
			l.F = &f
		case "S":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Line{}, fmt.Errorf("ssg: %w: bad S value %q", errParse, tok)
			}
			l.S = &n
		default:
			return Line{}, fmt.Errorf("ssg: %w: unknown param %q", errParse, tok)
		}
	}
	return l, nil
}

// String formats l deterministically: params always in X, Y, F, S order
// regardless of input order, so repeated compilation is byte-identical
// (spec §4.5 "Determinism").
func (l Line) String() string {
	var b strings.Builder
	if l.SeqGiven || l.Seq != 0 {
		fmt.Fprintf(&b, "N%d ", l.Seq)
	}
	b.WriteString(string(l.Op))
	if l.X != nil {
		fmt.Fprintf(&b, " X%s", formatNumber(*l.X))
	}
	if l.Y != nil {
		fmt.Fprintf(&b, " Y%s", formatNumber(*l.Y))
	}
	if l.F != nil {
		fmt.Fprintf(&b, " F%s", formatNumber(*l.F))
	}
	if l.S != nil {
		fmt.Fprintf(&b, " S%d", *l.S)
	}
	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
