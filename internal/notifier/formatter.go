package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketSeries/internal/ingest"
	"MarketSeries/internal/model"
	"MarketSeries/internal/recorder"
	"MarketSeries/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatRunReport formats an ingestion report into a Telegram message.
func FormatRunReport(rep *ingest.Report) string {
	var b strings.Builder

	icon := "✅"
	switch rep.Status {
	case ingest.StatusAborted:
		icon = "🚨"
	case ingest.StatusCancelled:
		icon = "⏹"
	}
	b.WriteString(fmt.Sprintf("%s <b>MarketSeries ingest</b> | %s\n\n", icon, rep.Started.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Source: %s\n", html.EscapeString(rep.Source)))
	b.WriteString(fmt.Sprintf("Status: %s\n", rep.Status))
	b.WriteString(fmt.Sprintf("Rows read: %d\n", rep.Rows))
	b.WriteString(fmt.Sprintf("Ingested: %d\n", rep.Ingested))
	if n := rep.SkippedTotal(); n > 0 {
		b.WriteString(fmt.Sprintf("Skipped: %d\n", n))
		for _, reason := range []ingest.SkipReason{ingest.SkipMalformed, ingest.SkipConversion, ingest.SkipFiltered} {
			if c := rep.Skipped[reason]; c > 0 {
				b.WriteString(fmt.Sprintf("  %s: %d\n", reason, c))
			}
		}
	}
	b.WriteString(fmt.Sprintf("Series: %d | Observations: %d\n", rep.Series, rep.Observations))
	b.WriteString(fmt.Sprintf("Duration: %v\n", rep.Duration().Round(time.Millisecond)))

	if rep.Fatal != "" {
		b.WriteString(fmt.Sprintf("\n⚠️ %s\n", html.EscapeString(rep.Fatal)))
	}
	return b.String()
}

// FormatTickers lists every ticker in the store with its observation count.
func FormatTickers(st *store.Store) string {
	if st == nil || st.Len() == 0 {
		return "No series loaded yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Series</b> (%d)\n\n", st.Len()))
	for _, t := range st.Tickers() {
		s, err := st.Series(t)
		if err != nil {
			b.WriteString(fmt.Sprintf("%s: %v\n", html.EscapeString(t), err))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %d obs\n", html.EscapeString(t), s.Len()))
	}
	return b.String()
}

// FormatSeries shows a series identity and its first and last observations.
func FormatSeries(s *model.Series) string {
	id := s.Identity()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b>\n\n", html.EscapeString(id.Ticker)))
	b.WriteString(fmt.Sprintf("Currency: %s\n", html.EscapeString(id.Currency)))
	b.WriteString(fmt.Sprintf("Type: %s\n", html.EscapeString(id.InstrumentType)))
	b.WriteString(fmt.Sprintf("Exchange: %s\n", html.EscapeString(id.ExchangeName)))
	b.WriteString(fmt.Sprintf("Time zone: %s (GMT offset %ds)\n", html.EscapeString(id.TimeZone), id.GMTOffset))
	b.WriteString(fmt.Sprintf("Observations: %d\n", s.Len()))
	if s.Len() == 0 {
		return b.String()
	}
	b.WriteString("\n" + formatObservation("First", s.At(0)))
	if s.Len() > 1 {
		b.WriteString(formatObservation("Last", s.At(s.Len()-1)))
	}
	return b.String()
}

func formatObservation(label string, o model.Observation) string {
	return fmt.Sprintf("%s %s UTC\n  O %.4f H %.4f L %.4f C %.4f V %.0f\n",
		label, o.Time.UTC().Format(timeLayout), o.Open, o.High, o.Low, o.Close, o.Volume)
}

// FormatRecentRuns formats journaled runs, newest first.
func FormatRecentRuns(runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %s: %d/%d rows, %d series\n",
			r.Started.Format("01-02 15:04"), r.Status, r.Ingested, r.Rows, r.Series))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	return "🤖 <b>MarketSeries</b>\n\n" +
		"/status - last ingestion report\n" +
		"/tickers - loaded series\n" +
		"/series TICKER - series detail\n" +
		"/partial [TICKER] - data from the last unfinished run\n" +
		"/history - recent runs\n" +
		"/run - start an ingestion now\n" +
		"/help - this message"
}
