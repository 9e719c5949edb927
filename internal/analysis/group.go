package analysis

import (
	"time"

	"github.com/focustrack/backend/internal/db/models"
)

const (
	dateLayout = "January 2, 2006"
	timeLayout = "15:04"
)

// AttentiveThreshold splits students into attentive / not attentive.
const AttentiveThreshold = 50.0

// Bucketer derives grouping keys from result timestamps. All keys use a single
// configured timezone so grouping is deterministic regardless of where the
// viewer or the server happens to run.
type Bucketer struct {
	loc *time.Location
}

func NewBucketer(loc *time.Location) Bucketer {
	if loc == nil {
		loc = time.Local
	}
	return Bucketer{loc: loc}
}

// DateKey formats a timestamp as a long date, e.g. "June 5, 2024".
func (b Bucketer) DateKey(t time.Time) string {
	return t.In(b.loc).Format(dateLayout)
}

// TimeKey formats a timestamp as a 24-hour HH:mm bucket. Rows sharing a bucket
// are treated as belonging to the same analysis run.
func (b Bucketer) TimeKey(t time.Time) string {
	return t.In(b.loc).Format(timeLayout)
}

// TimeGroup is one analysis run's rows, in input order.
type TimeGroup struct {
	Time     string           `json:"time"`
	Students []models.Student `json:"students"`
}

// DateGroup holds a day's runs in the order their rows first appeared.
type DateGroup struct {
	Date  string      `json:"date"`
	Times []TimeGroup `json:"times"`
}

// Grouped is the two-level date -> time projection of result rows. It is
// recomputed on every fetch and carries no identity of its own.
type Grouped struct {
	Dates []DateGroup `json:"dates"`
}

// Group partitions rows by date then time bucket. Every input row lands in
// exactly one bucket, relative order within a bucket is preserved, and groups
// appear in first-encounter order (newest first when the input is newest first).
func (b Bucketer) Group(rows []models.Student) Grouped {
	grouped := Grouped{Dates: []DateGroup{}}
	dateIdx := map[string]int{}
	timeIdx := map[string]map[string]int{}

	for _, row := range rows {
		date := b.DateKey(row.CreatedAt)
		tkey := b.TimeKey(row.CreatedAt)

		di, ok := dateIdx[date]
		if !ok {
			di = len(grouped.Dates)
			dateIdx[date] = di
			timeIdx[date] = map[string]int{}
			grouped.Dates = append(grouped.Dates, DateGroup{Date: date, Times: []TimeGroup{}})
		}

		ti, ok := timeIdx[date][tkey]
		if !ok {
			ti = len(grouped.Dates[di].Times)
			timeIdx[date][tkey] = ti
			grouped.Dates[di].Times = append(grouped.Dates[di].Times, TimeGroup{Time: tkey})
		}

		grouped.Dates[di].Times[ti].Students = append(grouped.Dates[di].Times[ti].Students, row)
	}
	return grouped
}

// RunSummary describes the most recent analysis run: every row sharing the
// newest row's time bucket, plus the mean attention over those rows. Average is
// nil when there are no rows at all.
type RunSummary struct {
	Time     string           `json:"time"`
	Students []models.Student `json:"students"`
	Average  *float64         `json:"average"`
}

// LatestRun selects the newest row's time bucket from rows sorted newest first
// and averages attention over the bucket. A missing percentage counts as 0 in
// the sum but the row still counts in the divisor. A run that spans a minute
// boundary splits into two buckets; only the newer one is reported.
func LatestRun(b Bucketer, rows []models.Student) RunSummary {
	if len(rows) == 0 {
		return RunSummary{Students: []models.Student{}}
	}

	latest := b.TimeKey(rows[0].CreatedAt)
	summary := RunSummary{Time: latest, Students: []models.Student{}}

	var total float64
	for _, row := range rows {
		if b.TimeKey(row.CreatedAt) != latest {
			continue
		}
		summary.Students = append(summary.Students, row)
		if row.AttentionPercentage != nil {
			total += *row.AttentionPercentage
		}
	}

	avg := total / float64(len(summary.Students))
	summary.Average = &avg
	return summary
}

// Attentive reports whether a percentage counts as attentive.
func Attentive(percentage float64) bool {
	return percentage >= AttentiveThreshold
}

// Classify returns the display label for a percentage.
func Classify(percentage float64) string {
	if Attentive(percentage) {
		return "Attentive"
	}
	return "Not Attentive"
}

// Clamp restricts a percentage to [0, 100] for progress-bar rendering.
func Clamp(percentage float64) float64 {
	if percentage < 0 {
		return 0
	}
	if percentage > 100 {
		return 100
	}
	return percentage
}
