package views

import (
	"time"

	"github.com/constructsync/dashboard/internal/models"
)

// Day is one calendar column of the dashboard week.
type Day struct {
	Date    time.Time
	Jobs    []models.Job
	Pending int
	Overdue bool
}

// WeekLength is the number of days shown, today included.
const WeekLength = 7

// Week buckets jobs by the calendar day of their start time, for today and
// the following six days in now's location.
func Week(jobs []models.Job, now time.Time) []Day {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]Day, WeekLength)
	for i := range days {
		days[i].Date = today.AddDate(0, 0, i)
	}

	for _, j := range jobs {
		if j.StartTime.IsZero() {
			continue
		}
		start := j.StartTime.In(loc)
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		for i := range days {
			if !days[i].Date.Equal(day) {
				continue
			}
			days[i].Jobs = append(days[i].Jobs, j)
			if IsPending(j) {
				days[i].Pending++
			}
			if IsOverdue(j, now) {
				days[i].Overdue = true
			}
			break
		}
	}

	return days
}
