// Package llm is the provider-neutral boundary to generative language services.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Generator produces free-form text, expected to contain a JSON object, for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is a single generation call. Schema is JSON schema text passed as data.
type Request struct {
	Operation string
	System    string
	Prompt    string
	Schema    string
}

// UserContent joins the prompt and the expected output schema into one user message.
func (r Request) UserContent() string {
	if strings.TrimSpace(r.Schema) == "" {
		return r.Prompt
	}
	return r.Prompt + "\n\nRespond with a single JSON object that conforms to this JSON schema:\n" + r.Schema
}

// Kind classifies a failed call so callers never match on provider messages.
type Kind string

const (
	KindQuota           Kind = "quota"
	KindTimeout         Kind = "timeout"
	KindUnavailable     Kind = "unavailable"
	KindInvalidResponse Kind = "invalid_response"
	KindOther           Kind = "other"
)

// Error is the structured failure returned by adapters.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if b.Len() == 0 {
		b.WriteString("llm")
	}
	fmt.Fprintf(&b, " %s", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the classification of err. Unstructured errors are classified by
// context and network timeouts, otherwise KindOther.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindOther
}

// IsQuota reports whether err is a quota or rate-limit failure.
func IsQuota(err error) bool {
	return KindOf(err) == KindQuota
}

// KindForStatus maps an HTTP status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindUnavailable
	default:
		return KindOther
	}
}

// TransportError classifies a failure that happened before a response was read.
func TransportError(provider string, err error) *Error {
	kind := KindUnavailable
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
