package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/stock-researcher/internal/httputil"
)

// Session holds the Yahoo cookie jar and the crumb that authenticated query
// endpoints require. A crumb is only valid together with the cookies it was
// issued with, so both live on the same http.Client.
type Session struct {
	httpClient *http.Client
	homeURL    string
	crumbURL   string
	userAgent  string

	mu        sync.Mutex
	crumb     string
	fetchedAt time.Time
}

func NewSession(homeURL, crumbURL, userAgent string, timeout time.Duration) *Session {
	jar, _ := cookiejar.New(nil)
	return &Session{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		homeURL:    homeURL,
		crumbURL:   crumbURL,
		userAgent:  userAgent,
	}
}

// Crumb returns the current crumb, fetching one if the session is empty.
func (s *Session) Crumb(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.crumb != "" {
		return s.crumb, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.crumb, nil
}

// Refresh discards the current crumb and performs the cookie/crumb handshake again.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Invalidate drops the crumb so the next Crumb call re-authenticates.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crumb != "" {
		fmt.Println("[YAHOO] Session invalidated")
	}
	s.crumb = ""
}

// Age reports how long ago the crumb was obtained; zero if there is none.
func (s *Session) Age() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crumb == "" {
		return 0
	}
	return time.Since(s.fetchedAt)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	// 1. Cookies from the home page; status is irrelevant, only Set-Cookie matters.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.homeURL, nil)
	if err != nil {
		return fmt.Errorf("build cookie request: %w", err)
	}
	s.decorate(req)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch cookie: %w", err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	// 2. Crumb bound to those cookies.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.crumbURL, nil)
	if err != nil {
		return fmt.Errorf("build crumb request: %w", err)
	}
	s.decorate(req)

	resp, err = httputil.Do(ctx, s.httpClient, req)
	if err != nil {
		return fmt.Errorf("fetch crumb: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("read crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "<") {
		return fmt.Errorf("invalid crumb received")
	}

	s.crumb = crumb
	s.fetchedAt = time.Now()
	fmt.Println("[YAHOO] Session established")
	return nil
}

func (s *Session) decorate(req *http.Request) {
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Origin", "https://finance.yahoo.com")
	req.Header.Set("Referer", "https://finance.yahoo.com/")
}
