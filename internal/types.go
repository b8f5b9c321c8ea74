package internal

// RawRow is one tabular row as read from a source, before normalization.
type RawRow []string

// Table is a header row plus data rows. Rows are padded to the header width.
type Table struct {
	Header RawRow
	Rows   []RawRow
}

// House is the canonical listing record rendered on the page.
type House struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Address  string `json:"address"`
	Icon     string `json:"icon"`
	Slug     string `json:"slug"`
}

type Strategy string

const (
	StrategyPrimary  Strategy = "primary"
	StrategyFallback Strategy = "fallback"
)

// Loaded is a table together with where it came from.
type Loaded struct {
	Table    Table
	Strategy Strategy
	Source   string
}

// Pin is one map marker consumed by the offline map generator.
type Pin struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	HouseName string  `json:"houseName"`
	Address   string  `json:"address"`
	ThemeIcon string  `json:"themeIcon"`
}

type GeocodeResult struct {
	Address     string
	Query       string
	Lat         float64
	Lon         float64
	DisplayName string
	Provider    string
}

type MatchStatus string

type MatchReason string

const (
	MatchOK       MatchStatus = "OK"
	MatchReview   MatchStatus = "REVIEW"
	MatchNotFound MatchStatus = "NOT_FOUND"

	ReasonTitle   MatchReason = "TITLE"
	ReasonAddress MatchReason = "ADDRESS"
	ReasonFuzzy   MatchReason = "FUZZY"
	ReasonNone    MatchReason = "NONE"
)

type PinCandidate struct {
	Index     int     `json:"index"`
	HouseName string  `json:"houseName"`
	Score     float64 `json:"score"`
}

// PinMatch ties one listed house to the pin that represents it on the map.
type PinMatch struct {
	House      House          `json:"house"`
	Status     MatchStatus    `json:"status"`
	Confidence float64        `json:"confidence"`
	Reason     MatchReason    `json:"reason"`
	Pin        *Pin           `json:"pin"`
	Candidates []PinCandidate `json:"candidates"`
}

type RunRow struct {
	ID        int
	TraceID   string
	Strategy  string
	Source    string
	Records   int
	Skipped   int
	Error     string
	TotalMs   float64
	CreatedAt string
}
