package dateutil

import "time"

// AgeInYear returns the age a person born in birthYear attains during the
// given calendar year. The planner works on whole tax years, so the age
// attained within the year is the age used for every eligibility test.
func AgeInYear(birthYear, year int) int {
	return year - birthYear
}

// HasReachedAge reports whether a person born in birthYear attains targetAge
// by the end of the given calendar year.
func HasReachedAge(birthYear, targetAge, year int) bool {
	return AgeInYear(birthYear, year) >= targetAge
}

// YearForAge returns the calendar year in which a person born in birthYear
// attains the given age.
func YearForAge(birthYear, age int) int {
	return birthYear + age
}

// YearIndex returns the zero-based offset of year from baseYear. Used for
// inflation indexing exponents and projection row lookups.
func YearIndex(baseYear, year int) int {
	return year - baseYear
}

// CurrentYear returns the current calendar year for default plan base years.
func CurrentYear() int {
	return time.Now().Year()
}
