package codecs

import "github.com/pkg/errors"

// Error taxonomy for the coding pipeline, per the construction-time vs.
// runtime error policy: construction errors are always fatal; FEC runtime
// errors are local to the offending block and are reported through
// DecodeStats, not returned as an error.
var (
	ErrMissingProperty    = errors.New("codecs: required property missing")
	ErrInvalidProperty    = errors.New("codecs: property value out of range")
	ErrUnknownCodec       = errors.New("codecs: unknown codec name")
	ErrBufferMisaligned   = errors.New("codecs: buffer length misaligned to block geometry")
	ErrTooManyErrors      = errors.New("codecs: too many errors to correct")
	ErrIncompatibleHeader = errors.New("codecs: incompatible packet header")
	ErrInternalInvariant  = errors.New("codecs: internal invariant violated")
	ErrInvalidField       = errors.New("codecs: invalid galois field polynomial")
)
