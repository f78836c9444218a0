package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the fetch and analysis pipeline can report. The presentation layer turns a
// kind into a localized message; nothing below it formats user facing text.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidHandle
	KindDisallowedHost
	KindAccountNotFound
	KindRateLimited
	KindNetwork
	KindAPI
	KindCancelled
	KindNoDataForYear
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindInvalidHandle:   "invalid_handle",
	KindDisallowedHost:  "disallowed_host",
	KindAccountNotFound: "account_not_found",
	KindRateLimited:     "rate_limited",
	KindNetwork:         "network_error",
	KindAPI:             "api_error",
	KindCancelled:       "cancelled",
	KindNoDataForYear:   "no_data_for_year",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

// Sentinels usable with errors.Is; any *Error of the same kind matches.
var (
	ErrInvalidHandle   = &Error{Kind: KindInvalidHandle}
	ErrDisallowedHost  = &Error{Kind: KindDisallowedHost}
	ErrAccountNotFound = &Error{Kind: KindAccountNotFound}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrAPI             = &Error{Kind: KindAPI}
	ErrCancelled       = &Error{Kind: KindCancelled}
	ErrNoDataForYear   = &Error{Kind: KindNoDataForYear}
)

// Error carries a Kind plus the structured detail a caller may want to log or show: the HTTP status of the
// failing response, the number of attempts made and the host involved.
type Error struct {
	Kind     Kind
	Status   int
	Attempts int
	Host     string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Host != "" {
		msg += " (" + e.Host + ")"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
