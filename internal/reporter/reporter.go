package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/clickmapper/clickmapper/internal/models"
	"github.com/clickmapper/clickmapper/pkg/overlay"
	"github.com/clickmapper/clickmapper/pkg/utils"
)

// ErrInvalidPeriod is returned for an unknown report period
var ErrInvalidPeriod = errors.New("invalid period type")

// Source is the journal data a report is built from
type Source interface {
	GetLaunchesSince(since time.Time) ([]*models.LaunchEvent, error)
	CountErrorsSince(since time.Time) (int64, error)
}

// Reporter handles report generation
type Reporter struct {
	source Source
	clock  clockwork.Clock
}

// New creates a new reporter
func New(source Source, clock clockwork.Clock) *Reporter {
	return &Reporter{
		source: source,
		clock:  clock,
	}
}

// GenerateReport summarizes journaled sessions for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// Raw events from the database; aggregation happens here
	events, err := r.source.GetLaunchesSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get launch events")
	}

	sessionErrors, err := r.source.CountErrorsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count session errors")
	}

	report := &models.Report{
		Period:        *period,
		Sessions:      summarize(events),
		SessionErrors: int(sessionErrors),
		GeneratedAt:   r.clock.Now(),
	}
	for _, s := range report.Sessions {
		report.TotalClicks += s.Clicks
		report.TotalFailures += s.FailedLaunches
	}

	return report, nil
}

// summarize groups events by session, newest session first
func summarize(events []*models.LaunchEvent) []models.SessionSummary {
	bySession := make(map[string]*models.SessionSummary)
	for _, e := range events {
		s, ok := bySession[e.SessionID]
		if !ok {
			s = &models.SessionSummary{
				SessionID: e.SessionID,
				Started:   e.Timestamp,
				LastEvent: e.Timestamp,
			}
			bySession[e.SessionID] = s
		}

		if e.Timestamp.Before(s.Started) {
			s.Started = e.Timestamp
		}
		if e.Timestamp.After(s.LastEvent) {
			s.LastEvent = e.Timestamp
		}

		switch overlay.LaunchKind(e.Kind) {
		case overlay.LaunchRender:
			s.Renders++
		case overlay.LaunchSound:
			s.Clicks++
		}
		if e.Failed {
			s.FailedLaunches++
		}
	}

	summaries := make([]models.SessionSummary, 0, len(bySession))
	for _, s := range bySession {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Started.After(summaries[j].Started)
	})
	return summaries
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.clock.Now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	case "all":
		end = now

	default:
		return nil, errors.Wrapf(ErrInvalidPeriod, "%q (valid: day, week, month, all)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overlay Report - %s\n", report.Period.Type)
	if !report.Period.Start.IsZero() {
		fmt.Fprintf(&b, "Period: %s to %s\n",
			report.Period.Start.Format("2006-01-02 15:04"),
			report.Period.End.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "Clicks: %d  Failed launches: %d  Session errors: %d\n\n",
		report.TotalClicks, report.TotalFailures, report.SessionErrors)

	if len(report.Sessions) == 0 {
		b.WriteString("No sessions recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-38s %-17s %8s %8s %8s %8s\n", "Session", "Started", "Length", "Renders", "Clicks", "Failed")
	b.WriteString(strings.Repeat("-", 92) + "\n")

	for _, s := range report.Sessions {
		fmt.Fprintf(&b, "%-38s %-17s %8s %8d %8d %8d\n",
			s.SessionID,
			s.Started.Format("2006-01-02 15:04"),
			utils.FormatRoundedDuration(s.LastEvent.Sub(s.Started)),
			s.Renders,
			s.Clicks,
			s.FailedLaunches)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
