// Package errcode defines the stable numeric error space the assuan core
// surfaces to callers and to the wire (ERR lines).
package errcode

import (
	"errors"
	"fmt"
)

// Code is a stable numeric error value. The values are fixed (they are
// not a contiguous block) and are the numbers written on ERR lines.
type Code int

const (
	NoError Code = 0

	General         Code = 1
	UnknownCommand  Code = 275
	NotImplemented  Code = 69
	LineTooLong     Code = 274
	InvalidResponse Code = 76
	InvalidValue    Code = 39

	ReadError  Code = 56
	WriteError Code = 57

	EOF      Code = 16383
	Canceled Code = 99

	NoDataCallback    Code = 158
	NoInquireCallback Code = 159
	NestedCommands    Code = 179

	ConnectFailed Code = 141
	AcceptFailed  Code = 142
	Parameter     Code = 24
)

var defaultText = map[Code]string{
	NoError:           "Success",
	General:           "General error",
	UnknownCommand:    "Unknown command",
	NotImplemented:    "Not implemented",
	LineTooLong:       "Line too long",
	InvalidResponse:   "Invalid response",
	InvalidValue:      "Invalid value",
	ReadError:         "Read error",
	WriteError:        "Write error",
	EOF:               "End of file",
	Canceled:          "Canceled",
	NoDataCallback:    "No data callback registered",
	NoInquireCallback: "No inquire callback registered",
	NestedCommands:    "Nested commands",
	ConnectFailed:     "Connect failed",
	AcceptFailed:      "Accept failed",
	Parameter:         "Invalid parameter",
}

// RegisterCode extends the text table with an application-specific code,
// without requiring a fork of this package. Not safe to call concurrently
// with lookups; call during process init, before contexts are constructed.
func RegisterCode(code Code, text string) {
	defaultText[code] = text
}

// Text returns the registered description for code, or a generic fallback.
func Text(code Code) string {
	if t, ok := defaultText[code]; ok {
		return t
	}
	return fmt.Sprintf("Error %d", int(code))
}

// Error wraps a Code with an optional underlying cause and/or wire
// description, satisfying the error interface.
type Error struct {
	Code Code
	Desc string
	Err  error
}

func New(code Code) *Error {
	return &Error{Code: code}
}

func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

func WithDesc(code Code, desc string) *Error {
	return &Error{Code: code, Desc: desc}
}

func (e *Error) Error() string {
	desc := e.Desc
	if desc == "" {
		desc = Text(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("assuan: %s (code %d): %v", desc, int(e.Code), e.Err)
	}
	return fmt.Sprintf("assuan: %s (code %d)", desc, int(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// As reports whether err is (or wraps) an *Error, returning its Code, for
// callers that only want the numeric value.
func As(err error) (Code, bool) {
	if err == nil {
		return NoError, false
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code, true
	}
	return General, false
}
