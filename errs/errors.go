// Package errs defines the sentinel errors shared by all hashvec packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context before being returned.
package errs

import "errors"

// Configuration errors. These are returned while building a domain or a
// feature set and must abort setup.
var (
	ErrEmptyDomain           = errors.New("namespace domain is empty")
	ErrInvalidNamespaceName  = errors.New("invalid namespace name")
	ErrDuplicateNamespace    = errors.New("duplicate namespace name")
	ErrUnknownNamespace      = errors.New("unknown namespace")
	ErrInvalidKind           = errors.New("invalid feature kind")
	ErrEmptyFeature          = errors.New("feature definition has no components")
	ErrTargetComponent       = errors.New("feature definition must not use the target namespace")
	ErrNumericalInteraction  = errors.New("numerical feature must have exactly one component")
	ErrDomainMismatch        = errors.New("namespace belongs to a different domain")
	ErrInvalidBitWidth       = errors.New("bit width must be between 1 and 32")
	ErrInvalidConfig         = errors.New("invalid hyperparameter document")
	ErrUnsupportedConfigType = errors.New("unsupported config file type")
)

// Value errors.
var (
	ErrValueTypeMismatch = errors.New("value type mismatch")
	ErrLengthMismatch    = errors.New("parallel arrays have different lengths")
	ErrInvalidRecord     = errors.New("invalid raw record")
)

// Vector blob errors.
var (
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrInvalidMagicNumber  = errors.New("invalid magic number")
	ErrInvalidHeaderFlags  = errors.New("invalid header flags")
	ErrChecksumMismatch    = errors.New("payload checksum mismatch")
	ErrInvalidPayload      = errors.New("invalid vector payload")
	ErrIndexOutOfRange     = errors.New("vector index out of range")
	ErrBlobFinished        = errors.New("vector blob already finished")
	ErrTooManyVectors      = errors.New("too many vectors in blob")
	ErrFingerprintMismatch = errors.New("blob was built with a different feature set")
)
