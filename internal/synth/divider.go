package synth

// Output frequency and VCO limits for the ADF4351 (MHz).
const (
	MinOutputFreqMHz = 35.0
	MaxOutputFreqMHz = 4400.0
	MinVCOFreqMHz    = 2200.0
	MaxVCOFreqMHz    = 4400.0
)

// DividerChoice is the RF output divider stage selected for a target
// frequency, together with the 3-bit select code programmed into R4.
type DividerChoice struct {
	Divider    uint32 // power of two, 1..64
	SelectCode uint8  // 0..6, log2 of Divider
}

// dividerTable maps output frequency buckets (inclusive lower bound, MHz)
// to the divider that places the VCO inside its 2200-4400 MHz band.
// Ordered from highest bucket down; the final entry catches everything
// down to the 35 MHz minimum (35 * 64 = 2240 >= 2200, so every frequency
// in range lands in a valid bucket and there is no error path).
var dividerTable = []struct {
	minFreqMHz float64
	divider    uint32
	selectCode uint8
}{
	{2200.0, 1, 0},
	{1100.0, 2, 1},
	{550.0, 4, 2},
	{275.0, 8, 3},
	{137.5, 16, 4},
	{68.75, 32, 5},
	{0.0, 64, 6},
}

// SelectOutputDivider chooses the smallest output divider such that
// freqMHz * divider falls in the VCO band.
func SelectOutputDivider(freqMHz float64) DividerChoice {
	for _, entry := range dividerTable {
		if freqMHz >= entry.minFreqMHz {
			return DividerChoice{Divider: entry.divider, SelectCode: entry.selectCode}
		}
	}
	// Unreachable: the last table entry has a zero bound.
	last := dividerTable[len(dividerTable)-1]
	return DividerChoice{Divider: last.divider, SelectCode: last.selectCode}
}
