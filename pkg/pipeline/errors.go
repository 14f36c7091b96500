package pipeline

import (
	"errors"

	"github.com/octoscan/pixtract/pkg/providers"
)

// Kind classifies a failed invocation. Caller-correctable kinds (usage,
// environment, validation) and service-side kinds (network, api, response)
// occupy disjoint exit-code ranges.
type Kind int

const (
	KindUsage Kind = iota + 1
	KindEnvironment
	KindValidation
	KindNormalization
	KindSerialization
	KindNetwork
	KindAPI
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindEnvironment:
		return "environment"
	case KindValidation:
		return "validation"
	case KindNormalization:
		return "normalization"
	case KindSerialization:
		return "serialization"
	case KindNetwork:
		return "network"
	case KindAPI:
		return "api"
	case KindResponse:
		return "response"
	}
	return "unknown"
}

// exitCodes maps each kind to its process exit code.
var exitCodes = map[Kind]int{
	KindUsage:         2,
	KindEnvironment:   3,
	KindValidation:    4,
	KindNormalization: 5,
	KindSerialization: 6,
	KindNetwork:       7,
	KindAPI:           8,
	KindResponse:      9,
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// classifyProviderErr maps provider-level failures onto the taxonomy.
func classifyProviderErr(err error) *Error {
	var serErr *providers.SerializationError
	var netErr *providers.NetworkError
	var apiErr *providers.APIError
	var respErr *providers.ResponseError
	switch {
	case errors.As(err, &serErr):
		return fail(KindSerialization, err)
	case errors.As(err, &apiErr):
		return fail(KindAPI, err)
	case errors.As(err, &respErr):
		return fail(KindResponse, err)
	case errors.As(err, &netErr):
		return fail(KindNetwork, err)
	}
	return fail(KindNetwork, err)
}

// ExitCode returns the process exit code for an invocation result.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var perr *Error
	if errors.As(err, &perr) {
		if code, ok := exitCodes[perr.Kind]; ok {
			return code
		}
	}
	return 1
}
