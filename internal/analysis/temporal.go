package analysis

import (
	"time"

	"gpa/internal/gitlog"
)

// Temporal thresholds.
const (
	lateNightShare      = 0.25
	weekendShare        = 0.25
	consistentHourCount = 8 // fewer distinct active hours than this is a consistent schedule
)

// TemporalFlags are the booleans derived from the hour/day distribution.
type TemporalFlags struct {
	WorksLateNights    bool `json:"works_late_nights"`
	WorksWeekends      bool `json:"works_weekends"`
	ConsistentSchedule bool `json:"consistent_schedule"`
}

// TemporalReport is the output of the temporal detector. A window with zero
// commits is a valid result (counts 0, flags false), distinct from the
// precondition error of having no repository selected at all.
type TemporalReport struct {
	PeriodDays     int            `json:"period_days"`
	TotalCommits   int            `json:"total_commits"`
	CommitsByHour  map[int]int    `json:"commits_by_hour"`
	CommitsByDay   map[string]int `json:"commits_by_day"`
	NightCommits   int            `json:"night_commits"`
	WeekendCommits int            `json:"weekend_commits"`
	Patterns       TemporalFlags  `json:"patterns"`
}

// Flags exposes the report's booleans keyed by pattern name, for ingestion.
func (r TemporalReport) Flags() map[string]bool {
	return map[string]bool{
		"works_late_nights":   r.Patterns.WorksLateNights,
		"works_weekends":      r.Patterns.WorksWeekends,
		"consistent_schedule": r.Patterns.ConsistentSchedule,
	}
}

// AnalyzeTemporalPatterns buckets commits by local hour of day and day of
// week. Night is [22,24) plus [0,6); weekend is Saturday and Sunday.
func AnalyzeTemporalPatterns(commits []gitlog.Commit, days int) TemporalReport {
	report := TemporalReport{
		PeriodDays:    days,
		TotalCommits:  len(commits),
		CommitsByHour: make(map[int]int),
		CommitsByDay:  make(map[string]int),
	}

	for _, c := range commits {
		hour := c.Hour()
		report.CommitsByHour[hour]++
		report.CommitsByDay[c.Time.Weekday().String()]++

		if isNightHour(hour) {
			report.NightCommits++
		}
		switch c.Time.Weekday() {
		case time.Saturday, time.Sunday:
			report.WeekendCommits++
		}
	}

	if total := float64(len(commits)); total > 0 {
		report.Patterns = TemporalFlags{
			WorksLateNights:    float64(report.NightCommits) > total*lateNightShare,
			WorksWeekends:      float64(report.WeekendCommits) > total*weekendShare,
			ConsistentSchedule: len(report.CommitsByHour) < consistentHourCount,
		}
	}
	return report
}
