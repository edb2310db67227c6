package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"pos-agent/internal/models"

	"golang.org/x/net/publicsuffix"
)

// Options configures cookie names and the auth-failure policy.
type Options struct {
	SessionCookie        string
	CSRFCookie           string
	CSRFHeader           string
	AuthFailureThreshold int
}

// Session is the process-wide client state shared by the session provider and
// the API client. Other components only read it.
type Session struct {
	mu sync.Mutex

	user              *models.UserProfile
	csrfToken         string
	csrfHeader        string
	authFailureCount  int
	redirectScheduled bool

	jar     http.CookieJar
	baseURL *url.URL
	opts    Options
}

// New creates a session bound to the remote API base URL with an empty cookie jar.
func New(baseURL string, opts Options) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if opts.SessionCookie == "" {
		opts.SessionCookie = "jwt"
	}
	if opts.CSRFCookie == "" {
		opts.CSRFCookie = "XSRF-TOKEN"
	}
	if opts.CSRFHeader == "" {
		opts.CSRFHeader = "X-XSRF-TOKEN"
	}
	if opts.AuthFailureThreshold <= 0 {
		opts.AuthFailureThreshold = 3
	}

	return &Session{
		jar:        jar,
		baseURL:    u,
		opts:       opts,
		csrfHeader: opts.CSRFHeader,
	}, nil
}

// Jar returns the cookie jar holding the server-issued session cookies.
func (s *Session) Jar() http.CookieJar {
	return s.jar
}

// BaseURL returns the remote API base URL.
func (s *Session) BaseURL() *url.URL {
	u := *s.baseURL
	return &u
}

// CurrentUser returns a copy of the logged-in profile, or nil.
func (s *Session) CurrentUser() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) SetUser(user *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

func (s *Session) ClearUser() {
	s.SetUser(nil)
}

// CSRFToken returns the held anti-forgery token and the header it travels in.
// ok is false when no token is held.
func (s *Session) CSRFToken() (header, token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csrfHeader, s.csrfToken, s.csrfToken != ""
}

// SetCSRFToken stores a token in memory. An empty header keeps the current one.
func (s *Session) SetCSRFToken(header, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if header != "" {
		s.csrfHeader = header
	}
	s.csrfToken = token
}

// RecordSuccess resets the consecutive auth failure counter.
func (s *Session) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authFailureCount = 0
}

// RecordAuthFailure counts a 401/403 and reports whether the caller must now
// force the login redirect. It returns true at most once per Session lifetime.
func (s *Session) RecordAuthFailure() (redirect bool, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.redirectScheduled {
		return false, s.authFailureCount
	}
	s.authFailureCount++
	if s.authFailureCount < s.opts.AuthFailureThreshold {
		return false, s.authFailureCount
	}
	if s.hasSessionCookie() {
		return false, s.authFailureCount
	}
	s.redirectScheduled = true
	return true, s.authFailureCount
}

func (s *Session) AuthFailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authFailureCount
}

func (s *Session) RedirectScheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirectScheduled
}

// HasSessionCookie reports whether a non-empty session cookie is held for the API.
func (s *Session) HasSessionCookie() bool {
	return s.hasSessionCookie()
}

func (s *Session) hasSessionCookie() bool {
	for _, c := range s.jar.Cookies(s.baseURL) {
		if c.Name == s.opts.SessionCookie && c.Value != "" {
			return true
		}
	}
	return false
}

// ClearSessionCookies expires the session and anti-forgery cookies.
func (s *Session) ClearSessionCookies() {
	paths := []string{"/"}
	if p := s.baseURL.Path; p != "" && p != "/" {
		paths = append(paths, p)
	}
	var expired []*http.Cookie
	for _, name := range []string{s.opts.SessionCookie, s.opts.CSRFCookie} {
		for _, p := range paths {
			expired = append(expired, &http.Cookie{Name: name, Value: "", Path: p, MaxAge: -1})
		}
	}
	s.jar.SetCookies(s.baseURL, expired)
}

// Reset returns the session to its start-of-life state, keeping cookies.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.csrfToken = ""
	s.csrfHeader = s.opts.CSRFHeader
	s.authFailureCount = 0
	s.redirectScheduled = false
}
