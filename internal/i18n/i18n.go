// Package i18n holds the display text of the dashboard in English and
// Chinese. Only presentation code (api views, the terminal watcher) uses it.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/Checker-Finance/market-radar/internal/format"
)

// Locale is a supported display language.
type Locale string

const (
	EN Locale = "en"
	ZH Locale = "zh"

	Default = EN
)

// Supported lists the locales in preference order; the first is the fallback.
var Supported = []Locale{EN, ZH}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Chinese})

// Parse maps an explicit tag ("zh", "zh-CN", "en_US.UTF-8") to a locale.
func Parse(tag string) (Locale, bool) {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	if tag == "" {
		return "", false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := t.Base()
	switch base.String() {
	case "en":
		return EN, true
	case "zh":
		return ZH, true
	default:
		return "", false
	}
}

// Negotiate picks a locale from an Accept-Language header, falling back to def.
func Negotiate(acceptLanguage string, def Locale) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	return Supported[idx]
}

// Resolve applies an explicit tag first, then the Accept-Language header.
func Resolve(explicit, acceptLanguage string, def Locale) Locale {
	if l, ok := Parse(explicit); ok {
		return l
	}
	return Negotiate(acceptLanguage, def)
}

// Messages is the text table of one locale.
type Messages struct {
	Title          string `json:"title"`
	Subtitle       string `json:"subtitle"`
	Realtime       string `json:"realtime"`
	Markets        string `json:"markets"`
	Search         string `json:"search"`
	Loading        string `json:"loading"`
	LoadError      string `json:"loadError"`
	LoadErrorHint  string `json:"loadErrorMessage"`
	NoData         string `json:"noData"`
	NoDataSubtitle string `json:"noDataSubtitle"`
	TabHot         string `json:"tabHot"`
	TabWeekly      string `json:"tabWeekly"`
	TabTrending    string `json:"tabTrending"`
	Rank           string `json:"rank"`
	Market         string `json:"market"`
	Category       string `json:"category"`
	Volume24h      string `json:"volume24h"`
	Volume7d       string `json:"volume7d"`
	PriceChange24h string `json:"priceChange24h"`
	EndTime        string `json:"endTime"`
	DataSource     string `json:"dataSource"`
}

var tables = map[Locale]Messages{
	EN: {
		Title:          "Polymarket Radar",
		Subtitle:       "Track the hottest prediction markets in real time",
		Realtime:       "Live",
		Markets:        "markets",
		Search:         "Search:",
		Loading:        "Loading market data...",
		LoadError:      "Failed to load",
		LoadErrorHint:  "Please try again later",
		NoData:         "No data",
		NoDataSubtitle: "No markets match the current view",
		TabHot:         "Hot (24h volume)",
		TabWeekly:      "Weekly (7d volume)",
		TabTrending:    "Trending (24h change)",
		Rank:           "Rank",
		Market:         "Market",
		Category:       "Category",
		Volume24h:      "24h Volume",
		Volume7d:       "7d Volume",
		PriceChange24h: "24h Change",
		EndTime:        "Ends",
		DataSource:     "Data from Polymarket Gamma API",
	},
	ZH: {
		Title:          "Polymarket 雷达",
		Subtitle:       "实时追踪最热门的预测市场",
		Realtime:       "实时",
		Markets:        "个市场",
		Search:         "搜索:",
		Loading:        "正在加载市场数据...",
		LoadError:      "加载失败",
		LoadErrorHint:  "请稍后重试",
		NoData:         "暂无数据",
		NoDataSubtitle: "当前视图没有符合条件的市场",
		TabHot:         "热门榜 (24h 交易量)",
		TabWeekly:      "周榜 (7天交易量)",
		TabTrending:    "趋势榜 (24h 涨跌)",
		Rank:           "排名",
		Market:         "市场",
		Category:       "分类",
		Volume24h:      "24h 交易量",
		Volume7d:       "7天交易量",
		PriceChange24h: "24h 涨跌",
		EndTime:        "结束时间",
		DataSource:     "数据来自 Polymarket Gamma API",
	},
}

// For returns the message table of l, or of Default for unknown locales.
func For(l Locale) Messages {
	if m, ok := tables[l]; ok {
		return m
	}
	return tables[Default]
}

// RelativePhrase renders a relative end date in l.
func RelativePhrase(l Locale, r format.Relative) string {
	if l == ZH {
		return zhPhrase(r)
	}
	return enPhrase(r)
}

func enPhrase(r format.Relative) string {
	switch r.Unit {
	case format.UnitEnded:
		return "ended"
	case format.UnitToday:
		return "today"
	case format.UnitTomorrow:
		return "tomorrow"
	case format.UnitDays:
		return plural(r.Count, "day") + " from now"
	case format.UnitWeeks:
		return plural(r.Count, "week") + " from now"
	case format.UnitMonths:
		return plural(r.Count, "month") + " from now"
	case format.UnitYears:
		if r.ExtraMonths > 0 {
			return plural(r.Count, "year") + " " + plural(r.ExtraMonths, "month") + " from now"
		}
		return plural(r.Count, "year") + " from now"
	default:
		return "-"
	}
}

func zhPhrase(r format.Relative) string {
	switch r.Unit {
	case format.UnitEnded:
		return "已结束"
	case format.UnitToday:
		return "今天"
	case format.UnitTomorrow:
		return "明天"
	case format.UnitDays:
		return fmt.Sprintf("%d天后", r.Count)
	case format.UnitWeeks:
		return fmt.Sprintf("%d周后", r.Count)
	case format.UnitMonths:
		return fmt.Sprintf("%d个月后", r.Count)
	case format.UnitYears:
		if r.ExtraMonths > 0 {
			return fmt.Sprintf("%d年%d个月后", r.Count, r.ExtraMonths)
		}
		return fmt.Sprintf("%d年后", r.Count)
	default:
		return "-"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
