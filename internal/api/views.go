package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/market-radar/internal/format"
	"github.com/Checker-Finance/market-radar/internal/i18n"
	"github.com/Checker-Finance/market-radar/internal/ranking"
	"github.com/Checker-Finance/market-radar/internal/refresh"
	"github.com/Checker-Finance/market-radar/pkg/model"
)

// StateReader exposes the latest refresh outcome.
type StateReader interface {
	Current() *refresh.State
}

// Row is one formatted line of a ranked view.
type Row struct {
	Rank        int             `json:"rank"`
	ID          string          `json:"id"`
	Question    string          `json:"question"`
	Category    string          `json:"category"`
	URL         string          `json:"url"`
	Image       string          `json:"image,omitempty"`
	Volume24h   string          `json:"volume24h"`
	Volume7d    string          `json:"volume7d"`
	PriceChange string          `json:"priceChange"`
	Rising      bool            `json:"rising"`
	EndDate     string          `json:"endDate"`
	EndsIn      format.Relative `json:"endsIn"`
	EndsInText  string          `json:"endsInText"`
}

// ViewResponse is the body of GET /api/views/:view.
type ViewResponse struct {
	View       ranking.View  `json:"view"`
	Query      string        `json:"query"`
	Locale     i18n.Locale   `json:"locale"`
	SnapshotID string        `json:"snapshotId"`
	FetchedAt  time.Time     `json:"fetchedAt"`
	Total      int           `json:"total"`
	Rows       []Row         `json:"rows"`
	Labels     i18n.Messages `json:"labels"`
	Error      string        `json:"error,omitempty"`
}

// ViewsHandler serves ranked views from the refresher's latest snapshot.
type ViewsHandler struct {
	logger        *zap.Logger
	state         StateReader
	urlBase       string
	defaultLocale i18n.Locale
	now           func() time.Time
}

func NewViewsHandler(logger *zap.Logger, state StateReader, urlBase string, defaultLocale i18n.Locale) *ViewsHandler {
	if defaultLocale == "" {
		defaultLocale = i18n.Default
	}
	return &ViewsHandler{
		logger:        logger,
		state:         state,
		urlBase:       urlBase,
		defaultLocale: defaultLocale,
		now:           time.Now,
	}
}

// GetView handles GET /api/views/:view?q=<query>&lang=<en|zh>.
func (h *ViewsHandler) GetView(c *fiber.Ctx) error {
	locale := i18n.Resolve(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage), h.defaultLocale)
	msgs := i18n.For(locale)

	view, err := ranking.ParseView(c.Params("view"))
	if err != nil {
		h.logger.Debug("api.views.unknown_view", zap.String("view", c.Params("view")))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	st := h.state.Current()
	if st == nil || st.Snapshot == nil {
		body := fiber.Map{"error": msgs.Loading}
		if st != nil && st.Err != nil {
			body["error"] = msgs.LoadError
			body["detail"] = st.Err.Error()
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}

	query := c.Query("q")
	selected := ranking.Select(st.Snapshot.Markets, view, query)

	resp := ViewResponse{
		View:       view,
		Query:      query,
		Locale:     locale,
		SnapshotID: st.Snapshot.ID.String(),
		FetchedAt:  st.Snapshot.FetchedAt,
		Total:      st.Snapshot.Len(),
		Rows:       BuildRows(selected, locale, h.urlBase, h.now()),
		Labels:     msgs,
	}
	if st.Err != nil {
		resp.Error = msgs.LoadError + ": " + st.Err.Error()
	}
	return c.JSON(resp)
}

// BuildRows formats markets for display, numbering them from 1.
func BuildRows(markets []model.Market, locale i18n.Locale, urlBase string, now time.Time) []Row {
	rows := make([]Row, len(markets))
	for i, m := range markets {
		rel := format.RelativeDate(m.EndDate, now)
		change := format.PriceChange(m.OneDayPriceChange)
		rows[i] = Row{
			Rank:        i + 1,
			ID:          m.ID,
			Question:    m.Question,
			Category:    m.Category,
			URL:         format.MarketURL(urlBase, m.Slug),
			Image:       m.Image,
			Volume24h:   format.Volume(m.Volume24hr),
			Volume7d:    format.Volume(m.Volume1wk),
			PriceChange: change,
			Rising:      !strings.HasPrefix(change, "-"),
			EndDate:     m.EndDate,
			EndsIn:      rel,
			EndsInText:  i18n.RelativePhrase(locale, rel),
		}
	}
	return rows
}
