package sqlite

import "time"

// timeLayout is the storage format for every DATETIME column. The fraction is
// fixed at nine digits so the stored text is fixed-width and lexicographic
// order matches chronological order; binding time.Time directly would store
// RFC3339Nano, whose trimmed trailing zeros break ORDER BY and keyset
// comparisons on sub-second timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// bindTime renders a timestamp for binding into a DATETIME column.
func bindTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
