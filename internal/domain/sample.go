package domain

// SamplePoint is one (quantity, price) observation feeding the log-log
// regression. Samples are built per estimation call and never persisted.
type SamplePoint struct {
	Quantity float64
	Price    float64
}

// WeekBucket is one entity-week aggregate used by the weekly estimation
// variant: summed quantity and mean price over all matching transactions
// in one ISO week. Week assignment is deterministic from the timestamp
// alone (ISO 8601 week, UTC).
type WeekBucket struct {
	Year     int     // ISO week-numbering year
	Week     int     // ISO week number (1..53)
	Quantity float64 // sum of quantities in the week
	Price    float64 // mean price in the week
}
