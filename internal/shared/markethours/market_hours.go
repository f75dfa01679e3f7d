// Package markethours provides the trading-session predicate used by the
// scheduler to gate hourly collection runs.
package markethours

import "time"

const (
	openHour    = 9
	openMinute  = 30
	closeHour   = 16
	closeMinute = 0
)

// exchangeZone is the NYSE trading timezone.
var exchangeZone = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsTradingSession reports whether t falls inside regular NYSE trading hours
// (weekdays 09:30-16:00 Eastern). Exchange holidays are not modelled; a run
// on a holiday simply collects zero new bars.
func IsTradingSession(t time.Time) bool {
	et := t.In(exchangeZone)

	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	open := time.Date(et.Year(), et.Month(), et.Day(), openHour, openMinute, 0, 0, exchangeZone)
	close := time.Date(et.Year(), et.Month(), et.Day(), closeHour, closeMinute, 0, 0, exchangeZone)

	return !et.Before(open) && et.Before(close)
}
