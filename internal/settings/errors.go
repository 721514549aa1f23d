package settings

import "errors"

// Domain errors for the settings package.
var (
	// ErrSettingNotFound is returned when a setting ID is not in the schema.
	ErrSettingNotFound = errors.New("settings: not found")

	// ErrInvalidSchema is returned when a schema cannot be parsed or fails
	// validation.
	ErrInvalidSchema = errors.New("settings: invalid schema")

	// ErrInvalidValue is returned for non-finite values and malformed
	// command payloads.
	ErrInvalidValue = errors.New("settings: invalid value")

	// ErrChangeVetoed is returned when a Changing handler cancels a change.
	ErrChangeVetoed = errors.New("settings: change vetoed")
)
