package bridge

import (
	"regexp"
	"strings"
)

// Status prefixes put on every result. The router matches them by prefix,
// so the spelling must not change.
const (
	PrefixError   = "ERROR: "
	PrefixSuccess = "SUCCESS: "
)

// Status is the outcome tag carried by a raw output
type Status int

const (
	StatusNone Status = iota
	StatusSuccess
	StatusError
	StatusInfo
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInfo:
		return "info"
	default:
		return "none"
	}
}

var statusPrefixPattern = regexp.MustCompile(`(?i)^(ERROR|SUCCESS|INFO):`)

// Output is one routed command completion
type Output struct {
	RequestID  string
	Key        Key
	Background bool

	// Raw is the prefixed text as produced by the executor
	Raw string

	Status  Status
	Message string
}

// Failed reports whether the raw text carried the error prefix
func (o Output) Failed() bool {
	return o.Status == StatusError
}

// NewOutput builds the routed form of a raw result for req
func NewOutput(req Request, raw string) Output {
	status, msg := StripStatus(raw)
	return Output{
		RequestID:  req.ID,
		Key:        req.Key,
		Background: req.Background,
		Raw:        raw,
		Status:     status,
		Message:    msg,
	}
}

// StripStatus removes a leading ERROR:/SUCCESS:/INFO: marker (any case)
// and trims the remainder.
func StripStatus(raw string) (Status, string) {
	m := statusPrefixPattern.FindStringSubmatch(raw)
	if m == nil {
		return StatusNone, strings.TrimSpace(raw)
	}

	var status Status
	switch strings.ToUpper(m[1]) {
	case "ERROR":
		status = StatusError
	case "SUCCESS":
		status = StatusSuccess
	default:
		status = StatusInfo
	}
	return status, strings.TrimSpace(raw[len(m[0]):])
}
