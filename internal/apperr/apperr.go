package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/Chikothe3rd/campuseats/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the error taxonomy every raw backend or network error is normalized to.
// Classification happens once at the repository/transport boundary; nothing above
// it pattern-matches on raw messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindRateLimited
	KindServerError
	KindConfiguration
	KindInvalidCredentials
	KindConflict
)

// String returns kind name
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindConfiguration:
		return "configuration"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// StatusError is an HTTP-style status carried by a transport error.
type StatusError struct {
	Status int
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Msg)
}

// NewStatusError creates status error
func NewStatusError(status int, msg string) *StatusError {
	return &StatusError{Status: status, Msg: msg}
}

// ErrMissingConfiguration signals an absent endpoint or credentials.
// It is fatal and is surfaced as a setup instruction, never retried.
var ErrMissingConfiguration = errors.New("missing endpoint or credentials configuration")

// pg error classes that indicate a transient backend condition
const (
	pgClassConnectionException   = "08"
	pgClassInsufficientResources = "53"
	pgClassOperatorIntervention  = "57"
	pgCodeUniqueViolation        = "23505"
	pgCodeSerializationFailure   = "40001"
)

// Classify maps err to its Kind. Order matters: domain sentinels first,
// then configuration, then transport shapes. Unknown falls through verbatim.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, models.ErrAlreadyClaimed),
		errors.Is(err, models.ErrConflictData):
		return KindConflict
	case errors.Is(err, models.ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrMissingConfiguration):
		return KindConfiguration
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Status {
		case 429:
			return KindRateLimited
		case 500, 502, 503, 504:
			return KindServerError
		}
		return KindUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgCodeUniqueViolation:
			return KindConflict
		case pgErr.Code == pgCodeSerializationFailure:
			return KindServerError
		case strings.HasPrefix(pgErr.Code, pgClassConnectionException):
			return KindNetwork
		case strings.HasPrefix(pgErr.Code, pgClassInsufficientResources),
			strings.HasPrefix(pgErr.Code, pgClassOperatorIntervention):
			return KindServerError
		}
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	return KindUnknown
}

// IsTransient is the single decision point the retry loop consults.
func IsTransient(err error) bool {
	switch Classify(err) {
	case KindNetwork, KindRateLimited, KindServerError:
		return true
	}
	return false
}

// UserMessage resolves err to a short human-readable sentence.
// Unknown errors pass the original message through verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case KindNetwork:
		return "Connection problem. Please check your network and try again."
	case KindRateLimited:
		return "Too many requests right now. Please wait a moment and try again."
	case KindServerError:
		return "The service is having trouble. Please try again shortly."
	case KindConfiguration:
		return "The service is not configured. Set the database and redis addresses and restart."
	case KindInvalidCredentials:
		return "Invalid login or password."
	case KindConflict:
		if errors.Is(err, models.ErrAlreadyClaimed) {
			return "Someone else already took this order."
		}
		return "This conflicts with something that already exists."
	default:
		return err.Error()
	}
}
