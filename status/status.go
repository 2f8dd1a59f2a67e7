package status

import (
	"fmt"
	"net/http"
	"strings"
)

// Status is the canonical, provider-agnostic outcome of an adapter operation.
type Status int

const (
	Unknown Status = iota
	Success
	BadRequest
	Forbidden
	NotFound
	InternalServerError
	Canceled
	Error
)

var names = map[Status]string{
	Unknown:             "Unknown",
	Success:             "Success",
	BadRequest:          "BadRequest",
	Forbidden:           "Forbidden",
	NotFound:            "NotFound",
	InternalServerError: "InternalServerError",
	Canceled:            "Canceled",
	Error:               "Error",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) OK() bool { return s == Success }

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	*s = Parse(string(b))
	return nil
}

// Parse reads a canonical status name in any case. Unrecognized names are Unknown.
func Parse(v string) Status {
	for s, n := range names {
		if strings.EqualFold(n, v) {
			return s
		}
	}
	return Unknown
}

// HTTPCode maps a status to the transport code used by the HTTP front door.
// Canceled uses the de-facto 499 "client closed request".
func (s Status) HTTPCode() int {
	switch s {
	case Success:
		return http.StatusOK
	case BadRequest:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// Token canonicalizes an upstream status token for a switch: trimmed and upper case.
func Token(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
