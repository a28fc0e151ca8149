package stim

// ToDACBits converts a pulse amplitude in millivolts to DAC bits given
// the least significant bit voltage of the device, truncating toward
// zero.  100 mV at 2.9 mV/bit is 34 bits, not 35.
//
// Truncation matters: offline analysis reconstructs nominal millivolts
// by inverting this exact formula, so rounding here would mislabel
// conditions near bit boundaries.
func ToDACBits(amplitudeMV, lsbMV float64) (int, error) {
	if lsbMV <= 0 {
		return 0, configErrorf("DAC lsb must be positive, got %g mV", lsbMV)
	}
	return int(amplitudeMV / lsbMV), nil
}
