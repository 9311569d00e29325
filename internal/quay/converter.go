package quay

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

const (
	// MinBit is the first bit with a surveyed position.
	MinBit = 22
	// lastSurveyedBit is the last bit with an individually measured position.
	lastSurveyedBit = 35
	// MaxBit is the last bit on the managed quay.
	MaxBit = 70

	// uniformSpacing applies to every bit after lastSurveyedBit.
	uniformSpacing = 30.0
)

// surveyedPositions holds the measured meter position of bits 22-35.
// Spacing is irregular along this stretch of the quay.
var surveyedPositions = map[int]float64{
	22: 0,
	23: 18,
	24: 36,
	25: 54,
	26: 75,
	27: 96,
	28: 117,
	29: 140,
	30: 163,
	31: 186,
	32: 210,
	33: 235,
	34: 260,
	35: 286,
}

var (
	bitPositions = buildBitTable()
	// bitIDs is bitPositions' keys in ascending order.
	bitIDs = sortedBits(bitPositions)

	notationPattern = regexp.MustCompile(`^(\d+)(?:([+-])(\d+))?$`)
)

func buildBitTable() map[int]float64 {
	table := make(map[int]float64, MaxBit-MinBit+1)
	for bit, m := range surveyedPositions {
		table[bit] = m
	}
	base := surveyedPositions[lastSurveyedBit]
	for bit := lastSurveyedBit + 1; bit <= MaxBit; bit++ {
		table[bit] = base + float64(bit-lastSurveyedBit)*uniformSpacing
	}
	return table
}

func sortedBits(table map[int]float64) []int {
	ids := make([]int, 0, len(table))
	for bit := range table {
		ids = append(ids, bit)
	}
	sort.Ints(ids)
	return ids
}

// BasePosition returns the meter position of a bit.
func BasePosition(bit int) (float64, bool) {
	m, ok := bitPositions[bit]
	return m, ok
}

// BitNotationToMeters converts notation such as "36+04" or "40" into meters.
// It reports false for malformed notation or an unknown bit.
func BitNotationToMeters(notation string) (float64, bool) {
	matches := notationPattern.FindStringSubmatch(notation)
	if matches == nil {
		return 0, false
	}

	bit, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	base, ok := bitPositions[bit]
	if !ok {
		return 0, false
	}

	if matches[2] == "" {
		return base, true
	}
	offset, err := strconv.Atoi(matches[3])
	if err != nil {
		return 0, false
	}
	if matches[2] == "-" {
		return base - float64(offset), true
	}
	return base + float64(offset), true
}

// floorBit returns the index in bitIDs of the highest bit whose base is <= meters.
// Positions before the first bit resolve to index 0.
func floorBit(meters float64) int {
	i := sort.Search(len(bitIDs), func(i int) bool {
		return bitPositions[bitIDs[i]] > meters
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// span returns the distance from bitIDs[i] to the following bit. The last bit
// reuses the uniform spacing.
func span(i int) float64 {
	if i+1 < len(bitIDs) {
		return bitPositions[bitIDs[i+1]] - bitPositions[bitIDs[i]]
	}
	return uniformSpacing
}

// MetersToBitPosition converts meters into a fractional bit coordinate used for
// continuous layout. Positions outside the table are extrapolated linearly.
func MetersToBitPosition(meters float64) float64 {
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return math.NaN()
	}
	i := floorBit(meters)
	bit := bitIDs[i]
	return float64(bit) + (meters-bitPositions[bit])/span(i)
}

// MetersToBitNotation converts meters into the nearest bit notation, e.g. "35+14"
// or "36-14". Non-finite input yields "-".
func MetersToBitNotation(meters float64) string {
	if math.IsNaN(meters) || math.IsInf(meters, 0) {
		return "-"
	}

	i := floorBit(meters)
	bit := bitIDs[i]
	remainder := meters - bitPositions[bit]

	if i+1 < len(bitIDs) && remainder >= span(i)/2 {
		bit = bitIDs[i+1]
		remainder = meters - bitPositions[bit]
	}

	offset := math.Round(remainder)
	sign := "+"
	if offset < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%d%s%02d", bit, sign, int(math.Abs(offset)))
}
