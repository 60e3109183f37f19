package api

import "encoding/json"

// SearchResult is a single ranked hit returned by the search endpoint.
type SearchResult struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	PublishedDate string  `json:"publishedDate,omitempty"`
	ContentType   string  `json:"contentType,omitempty"`
}

// UnmarshalJSON accepts both the camelCase and snake_case spellings used by
// the backend services.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type plain SearchResult
	var aux struct {
		plain
		PublishedAt     string `json:"published_at"`
		ContentTypeWire string `json:"content_type"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = SearchResult(aux.plain)
	if r.PublishedDate == "" {
		r.PublishedDate = aux.PublishedAt
	}
	if r.ContentType == "" {
		r.ContentType = aux.ContentTypeWire
	}
	return nil
}

// SearchResponse is one page of search results. Results keep the order the
// backend returned them in.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"perPage"`
}

func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	type plain SearchResponse
	var aux struct {
		plain
		PerPageWire int `json:"per_page"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = SearchResponse(aux.plain)
	if r.PerPage == 0 {
		r.PerPage = aux.PerPageWire
	}
	return nil
}

// Analysis holds the classifier's text statistics.
type Analysis struct {
	Length           int     `json:"length"`
	Complexity       float64 `json:"complexity"`
	PatternsDetected bool    `json:"patternsDetected"`
	Language         string  `json:"language,omitempty"`
}

func (a *Analysis) UnmarshalJSON(data []byte) error {
	type plain Analysis
	var aux struct {
		plain
		PatternsWire *bool `json:"patterns_detected"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Analysis(aux.plain)
	if aux.PatternsWire != nil {
		a.PatternsDetected = *aux.PatternsWire
	}
	return nil
}

// ClassificationResult is the verdict for one piece of text.
type ClassificationResult struct {
	IsHuman    bool     `json:"isHuman"`
	Confidence float64  `json:"confidence"`
	Analysis   Analysis `json:"analysis"`
}

func (c *ClassificationResult) UnmarshalJSON(data []byte) error {
	type plain ClassificationResult
	var aux struct {
		plain
		IsHumanWire *bool `json:"is_human"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = ClassificationResult(aux.plain)
	if aux.IsHumanWire != nil {
		c.IsHuman = *aux.IsHumanWire
	}
	return nil
}

// ClassificationResponse wraps a ClassificationResult with the text sample
// the backend looked at.
type ClassificationResponse struct {
	Result     ClassificationResult `json:"result"`
	TextSample string               `json:"textSample"`
	URL        string               `json:"url,omitempty"`
}

func (c *ClassificationResponse) UnmarshalJSON(data []byte) error {
	type plain ClassificationResponse
	var aux struct {
		plain
		TextSampleWire string `json:"text_sample"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = ClassificationResponse(aux.plain)
	if c.TextSample == "" {
		c.TextSample = aux.TextSampleWire
	}
	return nil
}

type classifyRequest struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// IndexRequest submits a document for indexing.
type IndexRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	ContentType string `json:"content_type,omitempty"`
	Language    string `json:"language,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// IndexResponse is the backend's acknowledgement of an IndexRequest.
type IndexResponse struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Indexed     bool    `json:"indexed"`
	Message     string  `json:"message"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// CrawlState is the lifecycle of a backend crawl job.
type CrawlState string

const (
	CrawlPending    CrawlState = "pending"
	CrawlInProgress CrawlState = "in_progress"
	CrawlCompleted  CrawlState = "completed"
	CrawlFailed     CrawlState = "failed"
)

// Terminal reports whether no further progress is expected.
func (s CrawlState) Terminal() bool {
	return s == CrawlCompleted || s == CrawlFailed
}

// CrawlStatus is the progress report for a crawl job.
type CrawlStatus struct {
	Status       CrawlState `json:"status"`
	Message      string     `json:"message,omitempty"`
	CrawledPages int        `json:"crawled_pages,omitempty"`
	TotalPages   int        `json:"total_pages,omitempty"`
}

// CrawlResponse acknowledges a crawl submission. RequestID is the only handle
// for later status checks.
type CrawlResponse struct {
	RequestID string      `json:"request_id"`
	Status    CrawlStatus `json:"status"`
}

type crawlRequest struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

// errorBody covers the error shapes the gateway and services send.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}
