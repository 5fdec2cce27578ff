package pricing

import "errors"

var (
	// ErrConfiguration marks invalid scalar inputs. It is returned before
	// any simulation work starts.
	ErrConfiguration = errors.New("invalid pricing configuration")

	// ErrUnsupportedVariant marks contracts this pricer cannot value, such as
	// American exercise.
	ErrUnsupportedVariant = errors.New("unsupported option variant")
)
