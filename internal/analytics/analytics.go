package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"interview-bot/internal/storage"
)

// DailyStats aggregates bot activity for one calendar day.
type DailyStats struct {
	Date            string                 `json:"date"`
	TotalEvents     int                    `json:"total_events"`
	UniqueUsers     int                    `json:"unique_users"`
	QuestionsAsked  int                    `json:"questions_asked"`
	AnswersReceived int                    `json:"answers_received"`
	Cancellations   int                    `json:"cancellations"`
	ByAction        map[storage.Action]int `json:"by_action"`
	ByQuestion      map[string]int         `json:"by_question"`
}

// AnalyzeDailyLogs counts the events that fall on targetDate in its location.
// Ignored free text is not counted as activity.
func AnalyzeDailyLogs(events []storage.Event, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:       startOfDay.Format("2006-01-02"),
		ByAction:   make(map[storage.Action]int),
		ByQuestion: make(map[string]int),
	}
	uniqueUsers := make(map[int64]struct{})

	for _, ev := range events {
		if ev.Timestamp.Before(startOfDay) || !ev.Timestamp.Before(endOfDay) {
			continue
		}
		if ev.Action == storage.ActionIgnored {
			continue
		}

		stats.TotalEvents++
		stats.ByAction[ev.Action]++
		uniqueUsers[ev.UserID] = struct{}{}

		switch ev.Action {
		case storage.ActionQuestion:
			stats.QuestionsAsked++
			if ev.Question != "" {
				stats.ByQuestion[ev.Question]++
			}
		case storage.ActionAnswer:
			stats.AnswersReceived++
		case storage.ActionCancel:
			stats.Cancellations++
		}
	}

	stats.UniqueUsers = len(uniqueUsers)
	return stats
}

// GenerateReportSummary renders the stats as a plain-text admin report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview bot activity for %s\n\n", ds.Date)
	fmt.Fprintf(&b, "Events: %d\n", ds.TotalEvents)
	fmt.Fprintf(&b, "Unique users: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&b, "Questions asked: %d\n", ds.QuestionsAsked)
	fmt.Fprintf(&b, "Answers received: %d\n", ds.AnswersReceived)
	fmt.Fprintf(&b, "Cancelled: %d\n", ds.Cancellations)

	if len(ds.ByQuestion) > 0 {
		b.WriteString("\nMost asked:\n")
		for _, name := range topQuestions(ds.ByQuestion, 5) {
			fmt.Fprintf(&b, "- %s: %d\n", name, ds.ByQuestion[name])
		}
	}
	return b.String()
}

func topQuestions(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
