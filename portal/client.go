// Package portal talks to the Ahgora web portal: it logs in and fetches a
// month of punches.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/dgraph-io/ristretto"
	"golang.org/x/net/publicsuffix"
	beaterr "tangled.org/beats/errors"
	"tangled.org/beats/timesheet"
)

const (
	DefaultURL = "https://www.ahgora.com.br"

	loginPath   = "/externo/login"
	punchesPath = "/externo/batidas"

	maxBodySize = 4 << 20
	monthTTL    = 5 * time.Minute
)

type Credentials struct {
	Company string
	User    string
	Pass    string
}

// Session is what a successful login leaves behind: the portal's session
// cookies for the user.
type Session struct {
	User    string
	Cookies []*http.Cookie
}

type Client struct {
	Url          *url.URL
	ForceNoCache bool

	client *http.Client
	jar    http.CookieJar
	months *ristretto.Cache
	l      *slog.Logger
}

type ClientOpt func(*Client)

func WithForceNoCache(force bool) ClientOpt {
	return func(c *Client) {
		c.ForceNoCache = force
	}
}

func WithLogger(l *slog.Logger) ClientOpt {
	return func(c *Client) {
		c.l = l
	}
}

func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.client = hc
	}
}

func NewClient(baseURL string, opts ...ClientOpt) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid portal url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	months, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        1e3,
		MaxCost:            1 << 6,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		Url:    u,
		client: &http.Client{Timeout: 10 * time.Second},
		jar:    jar,
		months: months,
		l:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.client.Jar = jar

	return c, nil
}

// Close releases the month memo.
func (c *Client) Close() {
	c.months.Close()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*http.Request, error) {
	reqUrl := c.Url.JoinPath(endpoint)

	if query != nil {
		reqUrl.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqUrl.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "beats/"+versioninfo.Short())
	return req, nil
}

type loginResult struct {
	Result string `json:"r"`
	Text   string `json:"text"`
}

// Login posts the credentials and keeps the session cookie the portal
// hands back.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	c.l.Debug("logging in", "company", creds.Company, "user", creds.User)

	form := url.Values{
		"empresa":   {creds.Company},
		"matricula": {creds.User},
		"senha":     {creds.Pass},
	}
	req, err := c.newRequest(ctx, http.MethodPost, loginPath, nil, []byte(form.Encode()))
	if err != nil {
		return nil, beaterr.AuthenticationError("failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, beaterr.AuthenticationError("login request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, beaterr.AuthenticationError("failed to read login response", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, beaterr.AuthenticationError(fmt.Sprintf("portal returned %s", resp.Status), nil)
	}

	var result loginResult
	if json.Unmarshal(body, &result) == nil && strings.EqualFold(result.Result, "error") {
		msg := result.Text
		if msg == "" {
			msg = "invalid credentials"
		}
		return nil, beaterr.AuthenticationError("portal rejected login", errors.New(msg))
	}

	cookies := c.jar.Cookies(c.Url)
	if len(cookies) == 0 {
		return nil, beaterr.AuthenticationError("session cookie absent", nil)
	}
	c.l.Debug("logged in", "cookie", cookies[0].Name)

	return &Session{User: creds.User, Cookies: cookies}, nil
}

// FetchMonth downloads the punches page for month (MM-YYYY, empty for the
// current one) and builds its records.
func (c *Client) FetchMonth(ctx context.Context, s *Session, month string) (*timesheet.Month, error) {
	if s == nil || len(s.Cookies) == 0 {
		return nil, beaterr.AuthenticationError("not logged in", nil)
	}

	key := s.User + "|" + month
	if !c.ForceNoCache {
		if v, ok := c.months.Get(key); ok {
			c.l.Debug("month served from memo", "month", month)
			return v.(*timesheet.Month), nil
		}
	}

	endpoint := punchesPath
	if month != "" {
		endpoint = punchesPath + "/" + month
	}

	cacheKey := s.User
	if c.ForceNoCache {
		cacheKey = strconv.FormatInt(time.Now().UnixNano(), 10)
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, url.Values{"cache": {cacheKey}}, nil)
	if err != nil {
		return nil, beaterr.FetchError("failed to build punches request", err)
	}
	if c.ForceNoCache {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
	c.jar.SetCookies(c.Url, s.Cookies)

	c.l.Debug("fetching punches", "url", req.URL.String())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, beaterr.FetchError("punches request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beaterr.FetchError(fmt.Sprintf("portal returned %s", resp.Status), nil)
	}

	days, err := ExtractRows(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, beaterr.FetchError("failed to read punches", err)
	}
	c.l.Debug("punches extracted", "days", len(days))

	m := timesheet.BuildMonth(days)
	c.months.SetWithTTL(key, m, 1, monthTTL)
	c.months.Wait()

	return m, nil
}
