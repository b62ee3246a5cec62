package assistant

import (
	"errors"
	"fmt"
)

// Kind classifies a failed exchange.
type Kind string

const (
	// KindValidation means the request was rejected before any network call.
	KindValidation Kind = "VALIDATION"
	// KindThrottled means the service reported it is handling too many requests.
	KindThrottled Kind = "THROTTLED"
	// KindService is any other non-success HTTP status.
	KindService Kind = "SERVICE"
	// KindApplication is a success status whose body carries an error field.
	KindApplication Kind = "APPLICATION"
	// KindNoPlan is a plan request answered without a plan title.
	KindNoPlan Kind = "NO_PLAN"
	// KindTransport means the request never produced an HTTP response.
	KindTransport Kind = "TRANSPORT"
)

// Sentinels for errors.Is checks against *Error.
var (
	ErrValidation  = errors.New("validation failed")
	ErrThrottled   = errors.New("service throttled")
	ErrService     = errors.New("service error")
	ErrApplication = errors.New("application error")
	ErrNoPlan      = errors.New("no plan generated")
	ErrTransport   = errors.New("transport error")

	// ErrBusy is returned when a call is started while the same affordance
	// already has one in flight.
	ErrBusy = errors.New("request already in flight")
)

var sentinels = map[Kind]error{
	KindValidation:  ErrValidation,
	KindThrottled:   ErrThrottled,
	KindService:     ErrService,
	KindApplication: ErrApplication,
	KindNoPlan:      ErrNoPlan,
	KindTransport:   ErrTransport,
}

// Error is a user-visible failure of one exchange. Message is meant to be
// shown verbatim.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
