package ssg

// Code is the closed set of error kinds the controller reports in the wire
// `code=` token (spec §6). It is the in-memory tagged-variant representation
// of that token: construct and compare Codes, never raw strings, anywhere
// above the parse/format boundary.
type Code string

const (
	CodePARSE      Code = "PARSE"
	CodeSEQ        Code = "SEQ"
	CodeGAP        Code = "GAP"
	CodeNOT_HOMED  Code = "NOT_HOMED"
	CodeLIMIT      Code = "LIMIT"
	CodeENDSTOP    Code = "ENDSTOP"
	CodeHOMING_FAIL Code = "HOMING_FAIL"
	CodeBUSY_STATE Code = "BUSY_STATE"
	CodeHEARTBEAT  Code = "HEARTBEAT"
)

// Fatal reports whether the code is fatal for the current job (spec §7):
// the controller stops accepting motion (Error, or Paused for HEARTBEAT)
// and requires a fresh Home to recover.
func (c Code) Fatal() bool {
	switch c {
	case CodeLIMIT, CodeENDSTOP, CodeHOMING_FAIL, CodeHEARTBEAT:
		return true
	default:
		return false
	}
}
