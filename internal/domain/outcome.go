package domain

import "fmt"

// OutcomeKind classifies a ProbeOutcome. It mirrors spec.md §7's error-kind
// table for everything below kind 7 (configuration errors, which are fatal
// and use pkg/errors.AppError instead — see §7 [AMBIENT] note).
type OutcomeKind string

const (
	KindTransientNetwork OutcomeKind = "transient_network" // kind 1
	KindSessionAuth      OutcomeKind = "session_auth"       // kind 2
	KindRateLimit        OutcomeKind = "rate_limit"          // kind 3
	KindParseSchema      OutcomeKind = "parse_schema"        // kind 5
	KindPersistence      OutcomeKind = "persistence"         // kind 6
)

// ProbeOutcome is the sum type spec.md §9 calls for in place of the source's
// Result/Problem wrapper: Ok carries a successful simulation read, Unavailable
// marks spec kind 4 (semantic unavailability — never an error), Error carries
// anything from kinds 1/2/3/5/6 that survived retries.
type ProbeOutcome struct {
	ok          bool
	unavailable bool
	kind        OutcomeKind
	message     string

	Available bool
	Price     *float64
	ListPrice *float64
	Quantity  int
	Currency  string
}

// Ok builds a successful ProbeOutcome.
func Ok(available bool, price, listPrice *float64, quantity int, currency string) ProbeOutcome {
	return ProbeOutcome{ok: true, Available: available, Price: price, ListPrice: listPrice, Quantity: quantity, Currency: currency}
}

// Unavailable builds spec kind-4 semantic unavailability: not an error.
func Unavailable() ProbeOutcome {
	return ProbeOutcome{unavailable: true}
}

// Err builds a probe-level failure outcome.
func Err(kind OutcomeKind, message string) ProbeOutcome {
	return ProbeOutcome{kind: kind, message: message}
}

func (o ProbeOutcome) IsOk() bool          { return o.ok }
func (o ProbeOutcome) IsUnavailable() bool { return o.unavailable }
func (o ProbeOutcome) IsError() bool       { return !o.ok && !o.unavailable }
func (o ProbeOutcome) Kind() OutcomeKind   { return o.kind }
func (o ProbeOutcome) Message() string     { return o.message }

func (o ProbeOutcome) String() string {
	switch {
	case o.ok:
		return fmt.Sprintf("Ok(available=%v price=%v)", o.Available, o.Price)
	case o.unavailable:
		return "Unavailable"
	default:
		return fmt.Sprintf("Error(%s: %s)", o.kind, o.message)
	}
}
