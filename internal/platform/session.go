package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/publicsuffix"

	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// SessionConfig configures one HTTP Session Layer instance.
type SessionConfig struct {
	Host         string
	ProxyURL     string
	ProxyUser    string
	ProxyPass    string
	RequestTimeout time.Duration
}

// Session owns one cookie-jar-backed HTTP client per retailer host, per
// spec.md §4.1 and §5's "not shared across workers" rule — each worker
// constructs its own Session for the batch it owns.
type Session struct {
	host   string
	client *http.Client
	log    logging.Logger
}

// NewSession builds a warm HTTP session for one retailer host. Compression
// is handled transparently by net/http's Transport as long as no caller
// sets Accept-Encoding by hand, which this package never does.
func NewSession(cfg SessionConfig, log logging.Logger) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		if cfg.ProxyUser != "" {
			proxyURL.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPass)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		// Forward-proxying to a retailer host routinely breaks certificate
		// chain validation against the proxy's own MITM cert; the platform
		// traffic carries no secrets worth protecting against that proxy.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}

	return &Session{host: cfg.Host, client: client, log: log}, nil
}

// WarmUp performs the best-effort cookie-acquisition cycle spec.md §4.1
// describes: GET /, GET /_v/segment, GET /api/checkout/pub/orderForm.
// Individual failures are swallowed; only the cookie jar's resulting state
// matters to the caller.
func (s *Session) WarmUp(ctx context.Context) {
	for _, path := range []string{"/", "/_v/segment", "/api/checkout/pub/orderForm"} {
		req, err := s.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			continue
		}
		resp, err := s.client.Do(req)
		if err != nil {
			s.log.Debug("warm-up request failed", logging.String("path", path), logging.Error(err))
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func (s *Session) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, "https://"+s.host+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "es-AR,es;q=0.9,en;q=0.8")
	req.Header.Set("Referer", "https://"+s.host+"/")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do executes one request with the transient-failure retry policy (3
// tries, exponential backoff from a 2s base) and the 401/403 warm-up-then-
// retry escalation spec.md §4.1 and §6 describe. The caller gets back a
// buffered body so retries can safely re-read the request body.
func (s *Session) Do(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	attemptedWarmUp := false

	bo := backoff.NewExponentialBackOff(backoff.WithInitialInterval(2 * time.Second))
	return retryDo(ctx, bo, 3, func() (*http.Response, []byte, error, bool) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := s.newRequest(ctx, method, path, reader)
		if err != nil {
			return nil, nil, err, false
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, nil, err, true // network error: retryable
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)

		switch {
		case resp.StatusCode == 401 || resp.StatusCode == 403:
			if !attemptedWarmUp {
				attemptedWarmUp = true
				s.WarmUp(ctx)
				return nil, nil, fmt.Errorf("session challenge status %d, retrying after warm-up", resp.StatusCode), true
			}
			return resp, respBody, fmt.Errorf("session challenge persisted after warm-up: %d", resp.StatusCode), true
		case resp.StatusCode == 429:
			return resp, respBody, fmt.Errorf("rate limited: %d", resp.StatusCode), true
		case resp.StatusCode >= 500:
			return resp, respBody, fmt.Errorf("server error: %d", resp.StatusCode), true
		default:
			return resp, respBody, nil, false
		}
	})
}

type result struct {
	resp *http.Response
	body []byte
}

// retryDo adapts backoff/v5's generic Retry to an operation that also needs
// to report whether a given failure is retryable. A non-retryable failure is
// wrapped in backoff.Permanent and returned at once; 4xx responses other than
// 401/403/429 are not failures here and come back on the first attempt.
func retryDo(ctx context.Context, bo backoff.BackOff, maxTries uint, op func() (*http.Response, []byte, error, bool)) (*http.Response, []byte, error) {
	r, err := backoff.Retry(ctx, func() (result, error) {
		resp, body, err, retryable := op()
		if err == nil {
			return result{resp: resp, body: body}, nil
		}
		if !retryable {
			return result{}, backoff.Permanent(err)
		}
		return result{}, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxTries))
	if err != nil {
		return nil, nil, err
	}
	return r.resp, r.body, nil
}
