package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// toolError shapes an internal error for the tool boundary. The stable
// code leads the message so clients can branch on it; details follow in
// deterministic order. Raw context errors become timeout errors first.
func toolError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && verrors.GetCode(err) == "" {
		err = verrors.TimeoutError("operation timed out", err)
	}

	var e *verrors.Error
	if !errors.As(err, &e) {
		return fmt.Errorf("[%s] %s", verrors.ErrCodeInternal, err.Error())
	}

	if len(e.Details) == 0 {
		return e
	}

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " (%s=%s)", k, e.Details[k])
	}
	return errors.New(b.String())
}
