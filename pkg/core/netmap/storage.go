package netmap

// State groups the current system state parameters.
type State interface {
	// CurrentEpoch returns the number of the current epoch.
	CurrentEpoch() uint64
}

// Source is an interface that wraps basic network map receiving methods.
type Source interface {
	// NetMap returns the latest network map snapshot.
	//
	// NetMap must return exactly one non-nil value.
	//
	// Implementations must not retain the snapshot pointer and modify
	// the snapshot through it.
	NetMap() (*NetMap, error)

	// NetMapByEpoch returns network map snapshot by the epoch number.
	//
	// Must return exactly one non-nil value.
	NetMapByEpoch(epoch uint64) (*NetMap, error)

	// Epoch returns the number of the current epoch.
	Epoch() (uint64, error)
}
