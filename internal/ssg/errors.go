package ssg

import "errors"

// errParse is wrapped by every syntactic parse failure, so callers can use
// errors.Is to distinguish "bad input" from other failure modes without
// string matching.
var errParse = errors.New("parse error")

// IsParseError reports whether err originated from a line or reply parse
// failure (as opposed to a semantic rejection like a soft-limit violation).
func IsParseError(err error) bool {
	return errors.Is(err, errParse)
}
