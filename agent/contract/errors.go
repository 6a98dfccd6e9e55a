package contract

import "errors"

var (
	// ErrProviderOverload marks a rate/quota rejection from the inference or
	// embedding provider. It is the only error class the gateway retries.
	ErrProviderOverload = errors.New("provider overloaded")

	ErrModelInvoke     = errors.New("model invoke failed")
	ErrClassification  = errors.New("query classification failed")
	ErrQueryGeneration = errors.New("graph query generation failed")
	ErrUnauthenticated = errors.New("missing or invalid credential")
)

// IsOverload reports whether err is (or wraps) a provider overload.
func IsOverload(err error) bool {
	return errors.Is(err, ErrProviderOverload)
}
