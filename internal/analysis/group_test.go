package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/focustrack/backend/internal/db/models"
)

func pct(v float64) *float64 { return &v }

func student(id string, attention *float64, createdAt time.Time) models.Student {
	return models.Student{StudentID: id, AttentionPercentage: attention, CreatedAt: createdAt}
}

func ts(day, hour, min, sec int) time.Time {
	return time.Date(2024, time.June, day, hour, min, sec, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{0, "Not Attentive"},
		{49.99, "Not Attentive"},
		{50, "Attentive"},
		{50.01, "Attentive"},
		{100, "Attentive"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.percentage), "Classify(%v)", tt.percentage)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5))
	assert.Equal(t, 0.0, Clamp(0))
	assert.Equal(t, 73.5, Clamp(73.5))
	assert.Equal(t, 100.0, Clamp(100))
	assert.Equal(t, 100.0, Clamp(120))
}

func TestBucketerKeys(t *testing.T) {
	b := NewBucketer(time.UTC)
	when := ts(5, 14, 7, 30)
	assert.Equal(t, "June 5, 2024", b.DateKey(when))
	assert.Equal(t, "14:07", b.TimeKey(when))

	// Keys follow the configured timezone, not the row's own
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	bNY := NewBucketer(ny)
	assert.Equal(t, "10:07", bNY.TimeKey(when))
}

func TestGroupIsPartition(t *testing.T) {
	b := NewBucketer(time.UTC)
	rows := []models.Student{
		student("s1", pct(80), ts(6, 10, 6, 5)),
		student("s2", pct(40), ts(6, 10, 5, 50)),
		student("s3", pct(90), ts(6, 10, 5, 10)),
		student("s4", pct(20), ts(5, 9, 30, 0)),
		student("s5", nil, ts(5, 9, 30, 0)),
	}

	grouped := b.Group(rows)

	// Two dates, newest first
	assert.Len(t, grouped.Dates, 2)
	assert.Equal(t, "June 6, 2024", grouped.Dates[0].Date)
	assert.Equal(t, "June 5, 2024", grouped.Dates[1].Date)

	// June 6 splits into two time buckets, first-encounter order
	assert.Len(t, grouped.Dates[0].Times, 2)
	assert.Equal(t, "10:06", grouped.Dates[0].Times[0].Time)
	assert.Equal(t, "10:05", grouped.Dates[0].Times[1].Time)

	// Every row appears exactly once, relative order preserved in its bucket
	var seen []string
	total := 0
	for _, dg := range grouped.Dates {
		for _, tg := range dg.Times {
			for _, s := range tg.Students {
				seen = append(seen, s.StudentID)
				total++
			}
		}
	}
	assert.Equal(t, len(rows), total)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "s5"}, seen)
}

func TestGroupEmpty(t *testing.T) {
	b := NewBucketer(time.UTC)
	grouped := b.Group(nil)
	assert.NotNil(t, grouped.Dates)
	assert.Empty(t, grouped.Dates)
}

func TestGroupIdempotent(t *testing.T) {
	b := NewBucketer(time.UTC)
	rows := []models.Student{
		student("s1", pct(75), ts(6, 10, 6, 5)),
		student("s2", pct(25), ts(6, 10, 5, 50)),
	}
	assert.Equal(t, b.Group(rows), b.Group(rows))
}

func TestLatestRunNewestBucketOnly(t *testing.T) {
	b := NewBucketer(time.UTC)
	// Newest row is alone in 10:06; two older rows in 10:05
	rows := []models.Student{
		student("s3", pct(100), ts(6, 10, 6, 2)),
		student("s1", pct(80), ts(6, 10, 5, 40)),
		student("s2", pct(40), ts(6, 10, 5, 10)),
	}
	run := LatestRun(b, rows)
	assert.Equal(t, "10:06", run.Time)
	assert.Len(t, run.Students, 1)
	if assert.NotNil(t, run.Average) {
		assert.Equal(t, 100.0, *run.Average)
	}
}

func TestLatestRunAveragesWholeBucket(t *testing.T) {
	b := NewBucketer(time.UTC)
	rows := []models.Student{
		student("s1", pct(80), ts(6, 10, 5, 40)),
		student("s2", pct(40), ts(6, 10, 5, 10)),
		student("s3", pct(100), ts(6, 10, 4, 59)),
	}
	run := LatestRun(b, rows)
	assert.Equal(t, "10:05", run.Time)
	assert.Len(t, run.Students, 2)
	if assert.NotNil(t, run.Average) {
		assert.Equal(t, 60.0, *run.Average)
	}
}

func TestLatestRunMissingPercentageCountsInDivisor(t *testing.T) {
	b := NewBucketer(time.UTC)
	rows := []models.Student{
		student("s1", pct(90), ts(6, 10, 5, 40)),
		student("s2", nil, ts(6, 10, 5, 30)),
		student("s3", pct(30), ts(6, 10, 5, 10)),
	}
	run := LatestRun(b, rows)
	assert.Len(t, run.Students, 3)
	if assert.NotNil(t, run.Average) {
		assert.Equal(t, 40.0, *run.Average)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	b := NewBucketer(time.UTC)
	run := LatestRun(b, nil)
	assert.Nil(t, run.Average)
	assert.Empty(t, run.Students)
	assert.Empty(t, run.Time)
}
