package client

import "time"

// ResolveStatus derives a client's lifecycle status from its stored status
// and services. It is the single authority for status promotion:
//   - archived always wins
//   - a non-empty service list that is entirely completed promotes to finished
//   - otherwise the stored status passes through
func ResolveStatus(stored Status, services []Service) Status {
	if stored == StatusArchived {
		return StatusArchived
	}
	if len(services) > 0 && allCompleted(services) {
		return StatusFinished
	}
	return stored
}

func allCompleted(services []Service) bool {
	for i := range services {
		if services[i].Status != ServiceCompleted {
			return false
		}
	}
	return true
}

// DaysUntil returns the number of calendar days from now's date to the
// given date, in UTC. Past dates are negative.
func DaysUntil(now, date time.Time) int {
	from := truncateDay(now)
	to := truncateDay(date)
	return int(to.Sub(from).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
