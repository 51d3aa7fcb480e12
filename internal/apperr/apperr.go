// Package apperr defines the error taxonomy shared by the pipeline and the
// HTTP layer. Components classify failures with a Kind; handlers translate the
// Kind into a status code and a short public message.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindAcquisitionFailed
	KindEngineRateLimited
	KindEngine
	KindSynthesisFailed
	KindNotFound
)

// AcquisitionMessage is returned to callers when every relay strategy failed.
const AcquisitionMessage = "could not download media: the link may be private, geo-blocked, or the relay network is unavailable"

const rateLimitMessage = "transcription engine is rate limited, please retry shortly"

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAcquisitionFailed:
		return "acquisition_failed"
	case KindEngineRateLimited:
		return "engine_rate_limited"
	case KindEngine:
		return "engine_error"
	case KindSynthesisFailed:
		return "synthesis_failed"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func Input(msg string) error {
	return &Error{Kind: KindInput, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Acquisition(err error) error {
	return &Error{Kind: KindAcquisitionFailed, Message: AcquisitionMessage, Err: err}
}

func RateLimited(err error) error {
	return &Error{Kind: KindEngineRateLimited, Message: rateLimitMessage, Err: err}
}

// Engine classifies err as an engine failure unless it already carries a kind.
func Engine(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	return &Error{Kind: KindEngine, Err: err}
}

func Synthesis(err error) error {
	return &Error{Kind: KindSynthesisFailed, Message: "speech synthesis failed", Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindEngineRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text placed in the "error" field of a response body.
// Engine errors pass their detail through; unclassified errors do not.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	if e.Kind == KindEngine && e.Err != nil {
		return "transcription engine error: " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error()
}
