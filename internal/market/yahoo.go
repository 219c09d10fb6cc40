package market

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotFound means the provider has no data for the requested symbol.
	ErrNotFound = errors.New("market: symbol not found")
	// ErrInvalidPeriod means a history lookback period could not be parsed.
	ErrInvalidPeriod = errors.New("market: invalid period")
)

const (
	DefaultMaxArticles = 5
	DefaultPeriod      = "1y"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Options struct {
	HomeURL   string // cookie source
	CrumbURL  string
	QueryURL  string // quoteSummary host
	NewsURL   string // news stream endpoint
	UserAgent string
	Timeout   time.Duration
}

func DefaultOptions() Options {
	return Options{
		HomeURL:   "https://finance.yahoo.com",
		CrumbURL:  "https://query1.finance.yahoo.com/v1/test/getcrumb",
		QueryURL:  "https://query2.finance.yahoo.com",
		NewsURL:   "https://finance.yahoo.com/xhr/ncp",
		UserAgent: defaultUserAgent,
		Timeout:   60 * time.Second,
	}
}

// YahooClient is the market-data adapter backed by Yahoo Finance. All methods
// are read-only against the provider and perform a single attempt.
type YahooClient struct {
	session    *Session
	httpClient *http.Client
	queryURL   string
	newsURL    string
	bars       barSource
}

func NewYahooClient(opts Options) *YahooClient {
	def := DefaultOptions()
	if opts.HomeURL == "" {
		opts.HomeURL = def.HomeURL
	}
	if opts.CrumbURL == "" {
		opts.CrumbURL = def.CrumbURL
	}
	if opts.QueryURL == "" {
		opts.QueryURL = def.QueryURL
	}
	if opts.NewsURL == "" {
		opts.NewsURL = def.NewsURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}

	session := NewSession(opts.HomeURL, opts.CrumbURL, opts.UserAgent, opts.Timeout)
	c := &YahooClient{
		session:    session,
		httpClient: session.httpClient,
		queryURL:   strings.TrimRight(opts.QueryURL, "/"),
		newsURL:    opts.NewsURL,
	}
	c.bars = c.chartBars
	return c
}

// Session exposes the cookie/crumb session so it can be renewed on a schedule.
func (c *YahooClient) Session() *Session {
	return c.session
}

func (c *YahooClient) decorate(req *http.Request) {
	c.session.decorate(req)
	req.Header.Set("Accept", "application/json")
}

// invalidateOnAuth drops the session when Yahoo rejects the crumb.
func (c *YahooClient) invalidateOnAuth(status int) {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.session.Invalidate()
	}
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
