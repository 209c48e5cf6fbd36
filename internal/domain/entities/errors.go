package entities

import "errors"

// Redemption and issuance failure taxonomy. Handlers map these to HTTP
// status codes; the usecases never mutate the ledger when returning a
// validation error.
var (
	// ErrBadRequest signals malformed issuance policy.
	ErrBadRequest = errors.New("invalid upload policy")

	// ErrNotFound covers both a token that was never issued and one whose
	// ledger entry has expired. The two are deliberately indistinguishable.
	ErrNotFound = errors.New("upload token not found")

	// ErrAlreadyConsumed signals a second redemption of a single-use token.
	ErrAlreadyConsumed = errors.New("upload token already used")

	// ErrMissingPayload signals a redemption request without a file attached.
	ErrMissingPayload = errors.New("no file provided")

	// ErrPayloadTooLarge signals a file exceeding the record's size limit.
	ErrPayloadTooLarge = errors.New("file exceeds allowed size")

	// ErrUnsupportedType signals a file whose extension does not match the
	// record's allowed extension.
	ErrUnsupportedType = errors.New("file extension not allowed")

	// ErrStoreFault signals blob-store failure after the token was already
	// consumed. The token is spent with no stored artifact; callers see a
	// generic 500 but operators can tell this apart from validation errors.
	ErrStoreFault = errors.New("storage failed after token consumption")
)
