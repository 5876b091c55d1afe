package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"

	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/config"
	"github.com/EmreGunner/Leda-instagram-dm-tool-sub000/internal/model"
)

// maxErrorBody is how much of a failure body is kept in APIError.Body.
const maxErrorBody = 2048

// maxRedirects bounds redirect chains, e.g. a login wall bouncing around.
const maxRedirects = 10

// Options configures a Client.
type Options struct {
	APIBaseURL   string
	WebBaseURL   string
	AppID        string
	UserAgent    string
	Timeout      time.Duration
	ProxyAddress string
	MaxBodySize  int64
	Logger       *slog.Logger
}

// OptionsFromConfig derives client options from the application config.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		APIBaseURL:   cfg.APIBaseURL,
		WebBaseURL:   cfg.WebBaseURL,
		AppID:        cfg.AppID,
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		MaxBodySize:  cfg.MaxBodySize,
		Logger:       logger,
	}
}

// Client talks to the platform on behalf of one session.
// A Client is safe for concurrent use once InstallSession has returned.
type Client struct {
	httpClient  *http.Client
	transport   http.RoundTripper
	apiBase     string
	webBase     string
	appID       string
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger

	credential model.SessionCredential
	deviceID   string
}

// NewClient creates a Client with an empty cookie jar. The proxy address,
// when set, is validated but not dialed.
func NewClient(opts Options) (*Client, error) {
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = config.DefaultAPIBaseURL
	}
	if opts.WebBaseURL == "" {
		opts.WebBaseURL = config.DefaultWebBaseURL
	}
	if opts.AppID == "" {
		opts.AppID = config.DefaultAppID
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = config.DefaultMaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	transport, err := newTransport(opts.ProxyAddress)
	if err != nil {
		return nil, err
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}) //nolint:errcheck // cookiejar.New never fails

	return &Client{
		httpClient: &http.Client{
			Transport:     transport,
			Timeout:       opts.Timeout,
			Jar:           jar,
			CheckRedirect: limitRedirects,
		},
		transport:   transport,
		apiBase:     strings.TrimRight(opts.APIBaseURL, "/"),
		webBase:     strings.TrimRight(opts.WebBaseURL, "/"),
		appID:       opts.AppID,
		userAgent:   opts.UserAgent,
		maxBodySize: opts.MaxBodySize,
		logger:      opts.Logger,
	}, nil
}

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

// newTransport builds the HTTP transport, dialing through SOCKS5 when a
// proxy address is configured.
func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if proxyAddress == "" {
		return transport, nil
	}

	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks that the address is "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// InstallSession places the credential's cookies in the jar for both the API
// and web hosts. A missing device id is replaced by a random one for the
// X-IG-Device-ID header only; no cookie is invented.
func (c *Client) InstallSession(cred model.SessionCredential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(cred.Cookies()))
	for _, kv := range cred.Cookies() {
		cookies = append(cookies, &http.Cookie{Name: kv[0], Value: kv[1], Path: "/"})
	}

	for _, base := range []string{c.apiBase, c.webBase} {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", base, err)
		}
		c.httpClient.Jar.SetCookies(&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}, cookies)
	}

	c.credential = cred
	c.deviceID = cred.DeviceID
	if c.deviceID == "" {
		c.deviceID = strings.ToUpper(uuid.NewString())
	}
	return nil
}

// Identity returns the device user id of the installed session.
func (c *Client) Identity() string {
	return c.credential.Identity()
}

// Credential returns the installed session credential.
func (c *Client) Credential() model.SessionCredential {
	return c.credential
}

// PostURL returns the canonical public URL of a post.
func (c *Client) PostURL(shortcode string) string {
	return c.webBase + "/p/" + url.PathEscape(shortcode) + "/"
}

// setAPIHeaders sets the headers a logged-in browser sends to the web API.
func (c *Client) setAPIHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-IG-App-ID", c.appID)
	req.Header.Set("X-IG-Device-ID", c.deviceID)
	req.Header.Set("X-CSRFToken", c.credential.CSRFToken)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", c.webBase+"/")
	req.Header.Set("Origin", c.webBase)
}

// doJSON performs an API request and decodes a successful envelope into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, form url.Values, out any) error {
	if c.credential.SessionID == "" {
		return ErrNoSession
	}

	endpoint := c.apiBase + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	c.setAPIHeaders(req)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return err
	}

	if apiErr := c.checkResponse(resp, data); apiErr != nil {
		c.logger.Debug("platform request failed",
			"path", path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}

// envelope is the failure shape shared by API endpoints.
type envelope struct {
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	ErrorType     string     `json:"error_type"`
	CheckpointURL string     `json:"checkpoint_url"`
	Spam          bool       `json:"spam"`
	FeedbackTitle string     `json:"feedback_title"`
	Challenge     *challenge `json:"challenge"`
}

type challenge struct {
	URL string `json:"url"`
}

// checkResponse returns an APIError for failure envelopes, non-2xx statuses,
// and responses that ended on a login or challenge page.
func (c *Client) checkResponse(resp *http.Response, data []byte) *APIError {
	finalPath := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalPath = resp.Request.URL.Path
	}

	var env envelope
	_ = json.Unmarshal(data, &env) //nolint:errcheck // non-JSON bodies leave env empty

	apiErr := &APIError{
		StatusCode:    resp.StatusCode,
		Message:       env.Message,
		ErrorType:     env.ErrorType,
		CheckpointURL: env.CheckpointURL,
		Spam:          env.Spam,
		FeedbackTitle: env.FeedbackTitle,
		Body:          truncate(string(data), maxErrorBody),
	}
	if env.Challenge != nil && apiErr.CheckpointURL == "" {
		apiErr.CheckpointURL = env.Challenge.URL
	}

	switch {
	case strings.Contains(finalPath, "/challenge"):
		if apiErr.Message == "" {
			apiErr.Message = msgCheckpointRequired
		}
		return apiErr
	case strings.Contains(finalPath, "/accounts/login"):
		if apiErr.Message == "" {
			apiErr.Message = msgLoginRequired
		}
		return apiErr
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return apiErr
	case env.Status == "fail":
		return apiErr
	default:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
