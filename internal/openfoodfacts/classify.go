package openfoodfacts

import (
	"context"
	"net"
	"syscall"

	"github.com/go-faster/errors"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

// classify maps a transport error to a failure reason. Timeouts win over
// connectivity, so a DNS lookup that timed out counts as a timeout.
func classify(err error) product.Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return product.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return product.ReasonTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return product.ReasonUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return product.ReasonUnreachable
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ENETUNREACH,
		syscall.EHOSTUNREACH,
	} {
		if errors.Is(err, errno) {
			return product.ReasonUnreachable
		}
	}
	return product.ReasonOther
}
