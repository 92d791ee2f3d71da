package store

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// mapStoreError classifies a gRPC failure. Connectivity problems and
// deadline overruns are unavailability (retryable); everything else the
// server said is a protocol error.
func mapStoreError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return verrors.StoreUnavailable(fmt.Sprintf("%s timed out", op), err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
			return verrors.StoreUnavailable(fmt.Sprintf("%s: store unavailable", op), err)
		case codes.Canceled:
			return err
		default:
			return verrors.StoreProtocol(fmt.Sprintf("%s rejected by store", op), err)
		}
	}

	return verrors.StoreUnavailable(fmt.Sprintf("%s failed", op), err)
}
