package product

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the product database answered but carried no
// product payload for the requested barcode.
var ErrNotFound = errors.New("product not found")

// Record is a product document returned by the external food database.
// Every field is optional upstream; absent values are empty strings.
type Record struct {
	Barcode        string
	Name           string
	Brand          string
	Ingredients    string
	Categories     string
	NutritionGrade string
	ImageURL       string

	// Raw holds the complete upstream product object as received.
	Raw []byte
}

// Fetcher looks up a product record by barcode.
//
// Implementations return ErrNotFound when the database has no product for the
// barcode, and a *FetchError for any transport or decoding failure.
type Fetcher interface {
	Lookup(ctx context.Context, barcode string) (*Record, error)
}

// Reason classifies why a fetch failed.
type Reason int

const (
	// ReasonOther covers every failure that is neither a timeout nor a
	// connectivity problem: bad status codes, malformed bodies, cancellation.
	ReasonOther Reason = iota
	// ReasonTimeout means the request exceeded its time budget.
	ReasonTimeout
	// ReasonUnreachable means the remote host could not be reached at all.
	ReasonUnreachable
)

func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// FetchError describes a failed product fetch together with its
// classification.
type FetchError struct {
	Barcode string
	Reason  Reason
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch product %q (%s): %v", e.Barcode, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from err. Errors that are not a
// *FetchError are classified as ReasonOther.
func ReasonOf(err error) Reason {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonOther
}

// Outcome is a stable, machine-readable label for the result of a lookup.
type Outcome string

const (
	OutcomeFound       Outcome = "found"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeFailed      Outcome = "failed"
)

// OutcomeOf maps a Lookup error to its Outcome. A nil error is OutcomeFound.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeFound
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	switch ReasonOf(err) {
	case ReasonTimeout:
		return OutcomeTimeout
	case ReasonUnreachable:
		return OutcomeUnreachable
	default:
		return OutcomeFailed
	}
}
