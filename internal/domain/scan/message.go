package scan

import (
	"github.com/go-faster/errors"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

// User-facing texts shown by the result panel.
const (
	MessageNotFound = "Product not found."
	MessageTimeout  = "Request timed out. Please try scanning again."
	MessageNetwork  = "Network error. Please check your connection and try again."
	MessageFailed   = "Failed to fetch product. Please try scanning again."

	// Prompt is shown when there is neither a product nor an error.
	Prompt = "Upload an image to scan a barcode."
	// Placeholder replaces an absent ingredient list.
	Placeholder = "N/A"
)

// FailureMessage maps a fetch failure reason to its display text. Every
// reason has a message; unknown values fall back to MessageFailed.
func FailureMessage(r product.Reason) string {
	switch r {
	case product.ReasonTimeout:
		return MessageTimeout
	case product.ReasonUnreachable:
		return MessageNetwork
	default:
		return MessageFailed
	}
}

// ErrorMessage converts a Lookup error into the text the result panel shows.
func ErrorMessage(err error) string {
	if errors.Is(err, product.ErrNotFound) {
		return MessageNotFound
	}
	return FailureMessage(product.ReasonOf(err))
}
