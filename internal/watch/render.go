// Package watch renders ranked market views as a plain-text table for the
// radar-watch terminal client.
package watch

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/Checker-Finance/market-radar/internal/api"
	"github.com/Checker-Finance/market-radar/internal/i18n"
	"github.com/Checker-Finance/market-radar/internal/ranking"
	"github.com/Checker-Finance/market-radar/internal/refresh"
)

const questionWidth = 60

// Options selects what Render draws.
type Options struct {
	View    ranking.View
	Query   string
	Locale  i18n.Locale
	URLBase string
}

// Render writes one frame for st. A nil or empty state renders the loading
// line; a failed latest cycle keeps the previous rows under an error line.
func Render(w io.Writer, st *refresh.State, opts Options, now time.Time) error {
	msgs := i18n.For(opts.Locale)

	if _, err := fmt.Fprintf(w, "%s | %s\n", msgs.Title, msgs.Subtitle); err != nil {
		return err
	}

	if st == nil || st.Snapshot == nil {
		if st != nil && st.Err != nil {
			_, err := fmt.Fprintf(w, "%s: %v\n%s\n", msgs.LoadError, st.Err, msgs.LoadErrorHint)
			return err
		}
		_, err := fmt.Fprintln(w, msgs.Loading)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s · %d %s · %s\n",
		tabLabel(msgs, opts.View), st.Snapshot.Len(), msgs.Markets,
		st.Snapshot.FetchedAt.Local().Format("15:04:05")); err != nil {
		return err
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		if _, err := fmt.Fprintf(w, "%s %s\n", msgs.Search, q); err != nil {
			return err
		}
	}
	if st.Err != nil {
		if _, err := fmt.Fprintf(w, "! %s: %v\n", msgs.LoadError, st.Err); err != nil {
			return err
		}
	}

	rows := api.BuildRows(ranking.Select(st.Snapshot.Markets, opts.View, opts.Query), opts.Locale, opts.URLBase, now)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s\n%s\n", msgs.NoData, msgs.NoDataSubtitle)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		msgs.Rank, msgs.Market, msgs.Category, msgs.Volume24h, msgs.Volume7d, msgs.PriceChange24h, msgs.EndTime)
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank, clip(r.Question, questionWidth), r.Category, r.Volume24h, r.Volume7d, r.PriceChange, r.EndsInText)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, msgs.DataSource)
	return err
}

func tabLabel(msgs i18n.Messages, v ranking.View) string {
	switch v {
	case ranking.ViewVolume7d:
		return msgs.TabWeekly
	case ranking.ViewPriceChange:
		return msgs.TabTrending
	default:
		return msgs.TabHot
	}
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
