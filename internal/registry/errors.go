package registry

import "errors"

var (
	// ErrEmptyConfiguration is returned when a reconfiguration carries no
	// stage definitions.
	ErrEmptyConfiguration = errors.New("definition set is empty")

	// ErrMissingStageID is returned when a definition has no id.
	ErrMissingStageID = errors.New("definition has no id")

	// ErrDuplicateStageID is returned when two definitions share an id.
	ErrDuplicateStageID = errors.New("duplicate stage id")
)
