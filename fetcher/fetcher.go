// Package fetcher retrieves a page and its site's robots.txt over plain
// HTTP with a browser-like TLS fingerprint. It does not render JavaScript.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/aeoaudit/models"
	"golang.org/x/net/html"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	maxPageBytes   = 10 << 20
	maxRobotsBytes = 512 << 10
	maxRedirects   = 10
)

// Page is a fetched HTML document.
type Page struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
}

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// chromeH1Spec is a Chrome-like ClientHello with ALPN forced to http/1.1,
// computed once and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// http.Transport cannot speak h2 over a utls conn, so never offer it.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// New creates a Fetcher with a Chrome-like TLS fingerprint.
func New(opts Options) *Fetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2:   false,
		MaxIdleConnsPerHost: 4,
	}
	return newWithClient(&http.Client{Transport: transport}, opts)
}

func newWithClient(client *http.Client, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("too many redirects")
		}
		return nil
	}
	return &Fetcher{client: client, userAgent: opts.UserAgent, timeout: opts.Timeout}
}

// FetchPage GETs pageURL and returns its HTML. Non-HTML responses and
// error statuses fail with FETCH_FAILED.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, body, err := f.get(ctx, pageURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", maxPageBytes)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeFetchFailed, "failed to fetch page", err)
	}

	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 || !isHTMLContentType(ct) {
		return nil, models.NewAuditError(models.ErrCodeFetchFailed,
			fmt.Sprintf("page returned status %d (content-type: %s)", resp.StatusCode, ct), nil)
	}

	bodyStr := string(body)
	return &Page{
		HTML:       bodyStr,
		Title:      extractTitle(bodyStr),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// FetchRobots returns the robots.txt body for pageURL's origin. A missing
// or unreachable robots.txt yields "" so the audit treats every crawler as
// allowed.
func (f *Fetcher) FetchRobots(ctx context.Context, pageURL string) string {
	robotsURL, err := RobotsURL(pageURL)
	if err != nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, body, err := f.get(ctx, robotsURL, "text/plain,*/*;q=0.8", maxRobotsBytes)
	if err != nil {
		slog.Warn("fetcher: robots.txt unavailable", "url", robotsURL, "error", err)
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("fetcher: no robots.txt", "url", robotsURL, "status", resp.StatusCode)
		return ""
	}
	return string(body)
}

// RobotsURL returns the robots.txt location for pageURL's origin.
func RobotsURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("fetcher: not an absolute http(s) URL: %q", pageURL)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String(), nil
}

func (f *Fetcher) get(ctx context.Context, target, accept string, limit int64) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	return resp, body, nil
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}

// extractTitle tokenizes until the first <title> text.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
