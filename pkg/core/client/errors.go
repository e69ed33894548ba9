package client

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	localstore "github.com/stornet-dev/stornet-node/pkg/local_object_storage"
)

// IsErrObjectNotFound reports whether the remote call error means "node
// does not hold the object". Both a plain not-found result and a
// transport error with the NOT_FOUND status code are equivalent
// outcomes; any other error signals an infrastructure fault.
func IsErrObjectNotFound(err error) bool {
	if errors.Is(err, localstore.ErrNotFound) {
		return true
	}

	return status.Code(err) == codes.NotFound
}
