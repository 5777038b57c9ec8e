package rpc

import (
	"errors"

	"github.com/RevCBH/fsgit/internal/fserrors"
)

// codeOf recovers the stable per-variant JSON-RPC error code for err, via
// fserrors.Coded, falling back to a generic internal-error code for
// anything the taxonomy doesn't cover (spec.md §7 "Propagation").
func codeOf(err error) int {
	var coded fserrors.Coded
	if errors.As(err, &coded) {
		return int(coded.Code())
	}
	return codeInternal
}
