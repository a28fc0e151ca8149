package stim

// ArrayRouter is the slice of the array collaborator the allocator
// needs: connect an electrode to a stimulation channel and report which
// unit the routing fabric assigned.  Routing ties are broken by the
// hardware, not by this package.
type ArrayRouter interface {
	ConnectElectrodeToStimulation(electrode int) error

	// QueryStimulationAtElectrode reports the stimulation unit routed
	// to an electrode.  ok is false when no unit could be connected.
	QueryStimulationAtElectrode(electrode int) (unit int, ok bool, err error)
}

// AllocateStimUnits connects each electrode to a stimulation unit and
// returns the assigned unit ids in input order.  Later stages index
// into the returned slice by position, so the ordering is part of the
// contract.
//
// Allocation fails fast: the first electrode with no routable unit
// returns NoUnitAvailableError, and the first electrode resolving to a
// unit already claimed earlier in the same call returns
// DuplicateUnitError.  Duplicates are detected against the set of units
// seen so far in input order.
func AllocateStimUnits(r ArrayRouter, electrodes []int) ([]int, error) {
	units := make([]int, 0, len(electrodes))
	seen := make(map[int]struct{}, len(electrodes))
	for _, el := range electrodes {
		if err := r.ConnectElectrodeToStimulation(el); err != nil {
			return nil, err
		}
		unit, ok, err := r.QueryStimulationAtElectrode(el)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NoUnitAvailableError{Electrode: el}
		}
		if _, dup := seen[unit]; dup {
			return nil, DuplicateUnitError{Electrode: el, Unit: unit}
		}
		seen[unit] = struct{}{}
		units = append(units, unit)
	}
	return units, nil
}
