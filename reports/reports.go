// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reports

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

const dateLayout = "2006-01-02"

// dayBounds returns [start, end) of the calendar day containing day in loc
func dayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func within(ms int64, start, end time.Time) bool {
	return ms >= start.UnixMilli() && ms < end.UnixMilli()
}

// Daily buckets tickets for the calendar day containing day:
//   - Requested: requested during the day
//   - Completed: completed during the day
//   - Pending:   requested by the end of the day and still open at that point
func Daily(tickets []models.Ticket, day time.Time, loc *time.Location) models.DailyReport {
	start, end := dayBounds(day, loc)
	report := models.DailyReport{
		Date:      start.Format(dateLayout),
		Requested: []models.Ticket{},
		Completed: []models.Ticket{},
		Pending:   []models.Ticket{},
	}

	for _, t := range tickets {
		if within(t.RequestTime, start, end) {
			report.Requested = append(report.Requested, t)
		}
		doneAt, stamped := t.CompletedAt()
		if t.IsCompleted() && stamped && within(doneAt.UnixMilli(), start, end) {
			report.Completed = append(report.Completed, t)
		}
		if t.RequestTime < end.UnixMilli() {
			openAtEnd := !t.IsCompleted() || (stamped && !doneAt.Before(end))
			if openAtEnd {
				report.Pending = append(report.Pending, t)
			}
		}
	}
	return report
}

// Monthly summarizes tickets requested in the given month
func Monthly(tickets []models.Ticket, year int, month time.Month, loc *time.Location) models.MonthlyReport {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	days := end.AddDate(0, 0, -1).Day()

	report := models.MonthlyReport{
		Month:      start.Format("2006-01"),
		DailyTrend: make([]models.DayCount, days),
		Tickets:    []models.Ticket{},
	}
	for i := range report.DailyTrend {
		report.DailyTrend[i].Date = start.AddDate(0, 0, i).Format(dateLayout)
	}

	byDept := make(map[string]int)
	for _, t := range tickets {
		if !within(t.RequestTime, start, end) {
			continue
		}
		report.Tickets = append(report.Tickets, t)
		if t.IsCompleted() {
			report.CompletedCount++
		} else {
			report.PendingCount++
		}
		byDept[t.Department]++
		report.DailyTrend[t.RequestedAt().In(loc).Day()-1].Count++
	}
	report.Total = len(report.Tickets)

	report.Departments = make([]models.DepartmentCount, 0, len(byDept))
	for dept, n := range byDept {
		report.Departments = append(report.Departments, models.DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(report.Departments, func(i, j int) bool {
		a, b := report.Departments[i], report.Departments[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Department < b.Department
	})

	return report
}

// AverageResolutionMinutes is the mean time from request to completion
// over completed tickets, rounded to whole minutes. 0 when nothing is
// completed.
func AverageResolutionMinutes(tickets []models.Ticket) int {
	var total time.Duration
	n := 0
	for _, t := range tickets {
		doneAt, stamped := t.CompletedAt()
		if !t.IsCompleted() || !stamped {
			continue
		}
		total += doneAt.Sub(t.RequestedAt())
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(total.Minutes() / float64(n)))
}

// Summarize builds the dashboard figures as of now
func Summarize(tickets []models.Ticket, now time.Time, loc *time.Location) models.Summary {
	todayStart, _ := dayBounds(now, loc)

	summary := models.Summary{
		AverageResolutionMinutes: AverageResolutionMinutes(tickets),
		Last7Days:                make([]models.DayCount, 7),
	}

	// oldest day first, today last
	for i := range summary.Last7Days {
		summary.Last7Days[i].Date = todayStart.AddDate(0, 0, i-6).Format(dateLayout)
	}
	windowStart := todayStart.AddDate(0, 0, -6)
	windowEnd := todayStart.AddDate(0, 0, 1)

	urgency := map[models.Urgency]int{}
	for _, t := range tickets {
		urgency[t.Urgency]++
		if !t.IsCompleted() {
			summary.PendingCount++
			continue
		}
		summary.TotalCompleted++
		doneAt, stamped := t.CompletedAt()
		if !stamped {
			continue
		}
		if within(doneAt.UnixMilli(), windowStart, windowEnd) {
			day, _ := dayBounds(doneAt, loc)
			idx := int(math.Round(day.Sub(windowStart).Hours() / 24))
			summary.Last7Days[idx].Count++
			if idx == 6 {
				summary.CompletedToday++
			}
		}
	}

	for _, u := range []models.Urgency{models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow} {
		summary.Urgency = append(summary.Urgency, models.UrgencyCount{Urgency: u, Count: urgency[u]})
	}
	return summary
}

// ParseDay parses YYYY-MM-DD in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// ParseMonth parses YYYY-MM
func ParseMonth(s string) (int, time.Month, error) {
	d, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return d.Year(), d.Month(), nil
}
