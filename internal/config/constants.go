package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./berthplan.db"

	// DefaultTimezone is the zone port bulletins are published in
	DefaultTimezone = "Asia/Tokyo"

	// DefaultMinSternBit is the first bit of the managed quay range
	DefaultMinSternBit = 33

	// DefaultMarker opens each vessel entry in a pasted bulletin
	DefaultMarker = "◆"

	// DefaultMaxTextBytes caps a single pasted bulletin (1 MB)
	DefaultMaxTextBytes = 1 << 20
)
