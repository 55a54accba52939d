// internal/integrations/woocommerce/client.go
package woocommerce

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// StatusError: odpowiedź spoza 2xx, z początkiem treści.
type StatusError struct {
	Code   int
	URL    string
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s. %s", e.Code, e.URL, e.Detail)
}

type client struct {
	log      zerolog.Logger
	ua       string
	limiter  *rate.Limiter
	http     *http.Client
	insecure *http.Client // nil = fallback wyłączony
	tlsWarn  sync.Once
}

func newClient(log zerolog.Logger, cfg Config, limiter *rate.Limiter) *client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	c := &client{
		log:     log,
		ua:      cfg.UserAgent,
		limiter: limiter,
		http:    &http.Client{Timeout: timeout},
	}
	if cfg.InsecureTLSFallback {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		c.insecure = &http.Client{Timeout: timeout, Transport: tr}
	}
	return c
}

func (c *client) do(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil && c.insecure != nil && isTLSVerification(err) {
		c.tlsWarn.Do(func() {
			c.log.Warn().Err(err).Msg("TLS verification failed. Retrying with insecure TLS fallback.")
		})
		resp, err = c.insecure.Do(req.Clone(ctx))
	}
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", rawURL, err)
	}
	return resp, nil
}

func isTLSVerification(err error) bool {
	var verr *tls.CertificateVerificationError
	var unknown x509.UnknownAuthorityError
	var host x509.HostnameError
	var invalid x509.CertificateInvalidError
	return errors.As(err, &verr) || errors.As(err, &unknown) ||
		errors.As(err, &host) || errors.As(err, &invalid)
}

func statusError(resp *http.Response, rawURL string) error {
	head, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return &StatusError{
		Code:   resp.StatusCode,
		URL:    rawURL,
		Detail: strings.ToValidUTF8(string(head), "\uFFFD"),
	}
}

func ok(code int) bool { return code >= 200 && code < 300 }

// getJSON: przy allow404 odpowiedź 404 daje Absent bez błędu.
func (c *client) getJSON(ctx context.Context, rawURL string, allow404 bool) (catalog.Value, error) {
	resp, err := c.do(ctx, rawURL, "application/json")
	if err != nil {
		return catalog.Value{}, err
	}
	defer resp.Body.Close()

	if allow404 && resp.StatusCode == http.StatusNotFound {
		return catalog.Value{}, nil
	}
	if !ok(resp.StatusCode) {
		return catalog.Value{}, statusError(resp, rawURL)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		body = resp.Body
	}
	v, err := catalog.Decode(body)
	if err != nil {
		return catalog.Value{}, fmt.Errorf("invalid JSON from %s: %w", rawURL, err)
	}
	return v, nil
}

func (c *client) getBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	resp, err := c.do(ctx, rawURL, "*/*")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return nil, "", statusError(resp, rawURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
