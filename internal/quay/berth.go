package quay

// Berth boundaries expressed as fractional bit coordinates.
const (
	berth6From = 35.5
	berth7From = 45.5
	berth8From = 57.5
)

// ClassifyBerth returns the berth number holding a vessel whose bow and stern
// lie at the given meter positions. The vessel's midpoint decides.
func ClassifyBerth(bowM, sternM float64) int {
	mid := MetersToBitPosition((bowM + sternM) / 2)
	switch {
	case mid < berth6From:
		return 5
	case mid < berth7From:
		return 6
	case mid < berth8From:
		return 7
	default:
		return 8
	}
}
