package bridge

import "errors"

// Sentinel kinds for bridge errors.
var (
	// ErrContract marks host input that violates the call contract: an
	// unknown provider or action type, or a malformed required object.
	ErrContract = errors.New("host contract violation")
	// ErrEncode marks an internal event that could not be serialized.
	ErrEncode = errors.New("encode event")
	// ErrDeliver marks a host transport failure.
	ErrDeliver = errors.New("deliver event")
	// ErrUnknownCall is returned for host entry points that do not exist.
	ErrUnknownCall = errors.New("unknown host call")
	// ErrIncompleteCatalogue means an event kind lacks an encoder or entry.
	ErrIncompleteCatalogue = errors.New("incomplete event catalogue")
	// ErrMalformedCollection is carried by diagnostics for collection
	// arguments that are not JSON arrays.
	ErrMalformedCollection = errors.New("collection is not a json array")
)
