package models

// Quote is a real-time price snapshot for one symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"changesPercentage"`
	Volume    int64   `json:"volume"`
	DayLow    float64 `json:"dayLow"`
	DayHigh   float64 `json:"dayHigh"`
	PrevClose float64 `json:"previousClose"`
}

// CompanyProfile is fundamental company data for one symbol.
type CompanyProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Industry    string  `json:"industry"`
	Sector      string  `json:"sector"`
	MarketCap   float64 `json:"mktCap"`
	Employees   int     `json:"fullTimeEmployees"`
	Website     string  `json:"website"`
	Description string  `json:"description"`
}

// NewsItem is one news article from the provider.
type NewsItem struct {
	Symbol        string `json:"symbol,omitempty"`
	Title         string `json:"title"`
	Text          string `json:"text,omitempty"`
	Site          string `json:"site,omitempty"`
	URL           string `json:"url,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// MacroPoint is one observation of an economic indicator series.
type MacroPoint struct {
	Name  string  `json:"name"`
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// KBChunk is one retrieved knowledge-base passage.
type KBChunk struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// KBDocument is a document to be ingested into the knowledge base.
type KBDocument struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
