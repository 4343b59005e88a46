package genai

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure from the generation service.
type Kind int

const (
	KindGeneric Kind = iota
	KindQuota
	KindAuth
	KindNetwork
	KindTimeout
	KindParsing
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindParsing:
		return "parsing"
	default:
		return "generic"
	}
}

// Retryable reports whether an error of this kind may succeed on a later
// attempt. Auth errors won't become valid by retrying and a parse failure
// indicates a response-shape bug, not transience.
func (k Kind) Retryable() bool {
	return k != KindAuth && k != KindParsing
}

// Error is a classified failure of a named remote operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Retryable() bool {
	return e.Kind.Retryable()
}

// NewError builds a classified error without running the message heuristics.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify wraps err into an *Error for op, deriving the kind from the
// error's message. Classification is heuristic: vendor SDKs and raw HTTP
// clients surface quota, auth and transport failures as free-form text.
// Already-classified errors pass through with their kind preserved.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		if ge.Op == op {
			return ge
		}
		return &Error{Kind: ge.Kind, Op: op, Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "quota", "429", "resource_exhausted", "rate limit", "too many requests"):
		return &Error{Kind: KindQuota, Op: op, Err: err}
	case containsAny(msg, "401", "403", "unauthorized", "permission denied", "api key"):
		return &Error{Kind: KindAuth, Op: op, Err: err}
	case containsAny(msg, "context deadline exceeded", "timed out", "timeout"):
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	case containsAny(msg, "network", "fetch", "connection refused", "connection reset", "no such host", "broken pipe", "eof"):
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	case containsAny(msg, "json", "parse", "unmarshal", "unexpected end of", "invalid character"):
		return &Error{Kind: KindParsing, Op: op, Err: err}
	default:
		return &Error{Kind: KindGeneric, Op: op, Err: err}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
