package object

import (
	"context"
	"errors"
	"fmt"

	"github.com/stornet-dev/stornet-node/pkg/core/object"
)

var errNoVerifier = errors.New("copy verification is not configured")

// CountCopies reports how many copies of the object the network
// currently holds, measured against the latest network map snapshot.
func (s *Service) CountCopies(ctx context.Context, addr object.Address) (int, error) {
	if s.verifier == nil {
		return 0, errNoVerifier
	}

	nm, err := s.netmapSrc.NetMap()
	if err != nil {
		return 0, fmt.Errorf("could not get network map: %w", err)
	}

	return s.verifier.CountCopies(ctx, addr, nm)
}
