package notifier

import (
	"fmt"
	"html"
	"strings"

	"FundLowDay/internal/model"
)

// FormatFrequencyReport formats a run summary into a Telegram message.
func FormatFrequencyReport(s *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Lowest NAV weekday</b> | %s %s\n\n", html.EscapeString(s.Code), yearSpan(s)))

	for _, d := range model.TradingDays {
		share := s.Frequency.Get(d)
		b.WriteString(fmt.Sprintf("%-9s %5.1f%% %s\n", d, share*100, bar(share)))
	}

	b.WriteString("\n")
	b.WriteString(FormatWeekCounts(s))
	b.WriteString("\n")
	if s.MatchedWeeks < s.TotalWeeks {
		b.WriteString(fmt.Sprintf("⚠️ Shares are over all %d weeks; %d weeks had no result.\n",
			s.TotalWeeks, s.TotalWeeks-s.MatchedWeeks))
	}
	return b.String()
}

// FormatWeekCounts is a one-line breakdown of how the weeks of a run ended up.
func FormatWeekCounts(s *model.RunSummary) string {
	return fmt.Sprintf("weeks: %d total, %d with data, %d empty, %d incomplete, %d failed",
		s.TotalWeeks, s.MatchedWeeks, s.EmptyWeeks, s.IncompleteWeeks, s.FailedWeeks)
}

func yearSpan(s *model.RunSummary) string {
	if s.StartYear == s.EndYear {
		return fmt.Sprint(s.StartYear)
	}
	return fmt.Sprintf("%d-%d", s.StartYear, s.EndYear)
}

func bar(share float64) string {
	return strings.Repeat("▇", int(share*20+0.5))
}
