// internal/gls/client.go
package gls

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/config"
)

const (
	loginPath  = "/extranet/login.aspx?ReturnUrl=~/default.aspx"
	searchPath = "/Extranet/MiraEnvios/Miraenvios.aspx"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
)

// viewState carries the ASP.NET postback fields every extranet form needs.
type viewState struct {
	ViewState          string
	ViewStateGenerator string
	EventValidation    string
}

// Client is a session-authenticated client for the GLS Spain extranet.
// The extranet is a classic ASP.NET web app: every POST must echo back the
// __VIEWSTATE fields scraped from the page, and the session rides on the
// ASP.NET_SessionId cookie. Cookies are persisted to disk so restarts reuse
// the session instead of logging in again.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	clientCode string
	cookieFile string
}

func NewClient(cfg config.GLSConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 60 * time.Second,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		clientCode: cfg.ClientCode,
		cookieFile: cfg.CookieFile,
	}

	if err := c.loadCookies(); err != nil {
		log.Debug().Err(err).Msg("gls: no saved session, will log in on first use")
	}

	return c, nil
}

// Login authenticates against the extranet login form and saves the
// resulting session cookies.
func (c *Client) Login(ctx context.Context) error {
	loginURL := c.baseURL + loginPath

	vs, err := c.scrapeViewState(ctx, loginURL)
	if err != nil {
		return fmt.Errorf("gls login page: %w", err)
	}

	form := url.Values{
		"__VIEWSTATE":          {vs.ViewState},
		"__VIEWSTATEGENERATOR": {vs.ViewStateGenerator},
		"__EVENTVALIDATION":    {vs.EventValidation},
		"usuario":              {c.username},
		"pass":                 {c.password},
		"Button1.x":            {"50"},
		"Button1.y":            {"10"},
	}

	resp, err := c.postForm(ctx, loginURL, form)
	if err != nil {
		return fmt.Errorf("gls login: %w", err)
	}
	defer resp.Body.Close()

	// A successful login redirects away from the login page.
	if resp.StatusCode != http.StatusOK || strings.Contains(strings.ToLower(resp.Request.URL.Path), "login.aspx") {
		return fmt.Errorf("gls login failed (landed on %s)", resp.Request.URL)
	}

	log.Info().Str("user", c.username).Msg("gls: logged in")
	if err := c.saveCookies(); err != nil {
		log.Warn().Err(err).Msg("gls: could not persist session cookies")
	}
	return nil
}

// fetchFormPage loads an extranet page and scrapes its viewstate, logging
// in again first when the session has expired.
func (c *Client) fetchFormPage(ctx context.Context, pageURL string) (viewState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return viewState{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return viewState{}, err
	}
	defer resp.Body.Close()

	if sessionExpired(resp) {
		log.Info().Msg("gls: session expired, logging in again")
		if err := c.Login(ctx); err != nil {
			return viewState{}, err
		}
		return c.scrapeViewState(ctx, pageURL)
	}
	if resp.StatusCode != http.StatusOK {
		return viewState{}, fmt.Errorf("gls page %s returned %d", pageURL, resp.StatusCode)
	}

	return parseViewState(resp)
}

func (c *Client) scrapeViewState(ctx context.Context, pageURL string) (viewState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return viewState{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return viewState{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return viewState{}, fmt.Errorf("gls page %s returned %d", pageURL, resp.StatusCode)
	}
	return parseViewState(resp)
}

func parseViewState(resp *http.Response) (viewState, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return viewState{}, fmt.Errorf("parse extranet page: %w", err)
	}

	field := func(name string) string {
		val, _ := doc.Find(`input[name="` + name + `"]`).Attr("value")
		return val
	}

	return viewState{
		ViewState:          field("__VIEWSTATE"),
		ViewStateGenerator: field("__VIEWSTATEGENERATOR"),
		EventValidation:    field("__EVENTVALIDATION"),
	}, nil
}

func sessionExpired(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Request.URL.Path), "login.aspx")
}

func (c *Client) postForm(ctx context.Context, target string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.httpClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es,en-US;q=0.9,en;q=0.8,it-IT;q=0.7,it;q=0.6")
}

func (c *Client) saveCookies() error {
	if c.cookieFile == "" {
		return nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	cookies := make(map[string]string)
	for _, ck := range c.httpClient.Jar.Cookies(base) {
		cookies[ck.Name] = ck.Value
	}

	payload, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cookieFile, payload, 0600)
}

func (c *Client) loadCookies() error {
	if c.cookieFile == "" {
		return fmt.Errorf("no cookie file configured")
	}
	payload, err := os.ReadFile(c.cookieFile)
	if err != nil {
		return err
	}

	var cookies map[string]string
	if err := json.Unmarshal(payload, &cookies); err != nil {
		return err
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	restored := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		restored = append(restored, &http.Cookie{Name: name, Value: value})
	}
	c.httpClient.Jar.SetCookies(base, restored)
	return nil
}
