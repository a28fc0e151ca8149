package stim

import "fmt"

// ConfigurationError indicates invalid compilation or setup parameters.
// It is always surfaced before any hardware interaction; no partial
// sequence is ever constructed from invalid input.
type ConfigurationError struct {
	Msg string
}

func (e ConfigurationError) Error() string {
	return "invalid stimulation configuration: " + e.Msg
}

func configErrorf(format string, args ...interface{}) ConfigurationError {
	return ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// NoUnitAvailableError is returned by AllocateStimUnits when the array
// cannot route a stimulation channel to an electrode.  The remedy is to
// select a neighboring electrode and re-run; there is no auto-retry.
type NoUnitAvailableError struct {
	Electrode int
}

func (e NoUnitAvailableError) Error() string {
	return fmt.Sprintf("no stimulation channel can connect to electrode %d", e.Electrode)
}

// DuplicateUnitError is returned by AllocateStimUnits when an electrode
// resolves to a stimulation unit that an earlier electrode in the same
// call already claimed.
type DuplicateUnitError struct {
	Electrode int
	Unit      int
}

func (e DuplicateUnitError) Error() string {
	return fmt.Sprintf("electrode %d connected to stimulation unit %d, which is already in use; select a neighboring electrode", e.Electrode, e.Unit)
}
