// Package intent extracts a structured booking intent from a language-model reply.
//
// A reply has the grammar
//
//	reply   = visible [ NEWLINE? DELIM payload ]
//	DELIM   = "___BOOK_ACTION___"
//	payload = ws ( fenced | object ) ws
//	fenced  = "```" [ "json" ] ws object ws "```"
//
// where object is exactly one JSON object with the BookingIntent fields.
// Anything other than whitespace after the object makes the reply malformed.
package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"droneOpsBooking/models"
)

// Delimiter separates the conversational text from the booking payload.
const Delimiter = "___BOOK_ACTION___"

// Kind tags the outcome of Parse.
type Kind int

const (
	NotFound Kind = iota
	Found
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	default:
		return "not_found"
	}
}

// MalformedOutputError is reported when the delimiter is present but the
// payload cannot be decoded into a valid intent.
type MalformedOutputError struct {
	Payload string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed booking block: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// Result is the tagged outcome of parsing one reply.
type Result struct {
	Kind    Kind
	Visible string
	Intent  models.BookingIntent
	// Err is a *MalformedOutputError when Kind is Malformed.
	Err error
}

// Parse splits reply into visible text and an optional booking intent.
// The visible text never contains the delimiter or payload.
func Parse(reply string) Result {
	idx := strings.Index(reply, Delimiter)
	if idx < 0 {
		return Result{Kind: NotFound, Visible: strings.TrimSpace(reply)}
	}
	visible := strings.TrimSpace(reply[:idx])
	payload := reply[idx+len(Delimiter):]

	in, err := decodePayload(payload)
	if err != nil {
		return Result{Kind: Malformed, Visible: visible, Err: &MalformedOutputError{Payload: strings.TrimSpace(payload), Err: err}}
	}
	if err := Validate(in); err != nil {
		return Result{Kind: Malformed, Visible: visible, Intent: in, Err: &MalformedOutputError{Payload: strings.TrimSpace(payload), Err: err}}
	}
	return Result{Kind: Found, Visible: visible, Intent: in}
}

func decodePayload(payload string) (models.BookingIntent, error) {
	var in models.BookingIntent
	body, err := stripFence(strings.TrimSpace(payload))
	if err != nil {
		return in, err
	}
	if body == "" {
		return in, errors.New("empty payload")
	}
	if strings.Contains(body, Delimiter) {
		return in, errors.New("more than one booking block")
	}
	if !strings.HasPrefix(body, "{") {
		return in, errors.New("payload is not a JSON object")
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decode payload: %w", err)
	}
	// Only whitespace may follow the object.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return in, errors.New("unexpected text after payload")
	}
	return in, nil
}

// stripFence removes a surrounding ```json ... ``` markdown fence. An opening
// fence without a closing one, or the reverse, is an error.
func stripFence(s string) (string, error) {
	opened := strings.HasPrefix(s, "```")
	if !opened {
		if strings.HasSuffix(s, "```") {
			return "", errors.New("closing fence without opening fence")
		}
		return s, nil
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "```") {
		return "", errors.New("opening fence without closing fence")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s), nil
}
