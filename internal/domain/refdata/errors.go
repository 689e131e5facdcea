package refdata

import "errors"

var (
	// ErrTypeCoercion marks a staged value that cannot be converted to its target column type.
	ErrTypeCoercion = errors.New("type coercion failed")
	// ErrAmbiguousRecord marks two staged records resolving to the same mapping key in one batch.
	ErrAmbiguousRecord = errors.New("ambiguous record in batch")
	// ErrConstraintViolation marks a uniqueness, foreign key or not-null violation from the store.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrUnknownSource marks a source mnemonic missing from ref_data.data_source.
	ErrUnknownSource = errors.New("unknown data source")
)
