package sqlstore

import "fmt"

// Dialect isolates the few expressions that differ between SQL backends.
// Queries are written with '?' placeholders and rebound per driver.
type Dialect struct {
	Name string
	// DateOut renders a date column as a "YYYY-MM-DD" string.
	DateOut func(col string) string
	// DatePrefix renders the first n characters of a date column so that it can
	// be compared to a period key.
	DatePrefix func(col string, n int) string
	// Greatest is the two-argument scalar max function.
	Greatest string
}

// Postgres stores dates as DATE.
var Postgres = Dialect{
	Name: "postgres",
	DateOut: func(col string) string {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	},
	DatePrefix: func(col string, n int) string {
		return fmt.Sprintf("substr(to_char(%s, 'YYYY-MM-DD'), 1, %d)", col, n)
	},
	Greatest: "GREATEST",
}

// SQLite stores dates as ISO TEXT.
var SQLite = Dialect{
	Name: "sqlite",
	DateOut: func(col string) string {
		return col
	},
	DatePrefix: func(col string, n int) string {
		return fmt.Sprintf("substr(%s, 1, %d)", col, n)
	},
	Greatest: "MAX",
}
