// Package proxy forwards requests the dashboard does not claim to a single
// fixed upstream origin and relays the answer verbatim.
package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/magicaleks/sysmon/internal/domain"
)

// strippedResponseHeaders never reach the caller: the relayed body has
// already been decoded and re-framed by this process.
var strippedResponseHeaders = []string{
	"Content-Encoding",
	"Content-Length",
	"Transfer-Encoding",
	"Connection",
}

// Forwarder replays inbound requests against the upstream. It does not
// retry, follow redirects or impose a timeout.
type Forwarder struct {
	upstream *url.URL
	client   *http.Client
	logger   *slog.Logger
}

func NewForwarder(upstream string, logger *slog.Logger) (*Forwarder, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream %q is not an absolute URL", upstream)
	}

	return &Forwarder{
		upstream: u,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

func (f *Forwarder) Upstream() *url.URL {
	u := *f.upstream
	return &u
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := f.Forward(r)
	if err != nil {
		f.logger.Error("proxy forward failed", "err", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "upstream unavailable"})
		return
	}
	defer resp.Body.Close()

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	// Writers that defer the status line (gin) must commit it here, or an
	// empty upstream body lets the router substitute its own 404 page.
	if hw, ok := w.(headerCommitter); ok {
		hw.WriteHeaderNow()
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.logger.Warn("proxy relay interrupted", "path", r.URL.Path, "err", err)
	}
}

type headerCommitter interface {
	WriteHeaderNow()
}

// Forward sends r to the upstream with the same method, path, query, body
// and headers (minus Host) and returns the upstream response unread.
func (f *Forwarder) Forward(r *http.Request) (*http.Response, error) {
	target := f.TargetURL(r.URL)

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		return nil, domain.UpstreamError{Method: r.Method, URL: target, Err: err}
	}
	out.ContentLength = r.ContentLength
	out.Header = r.Header.Clone()
	out.Header.Del("Host")
	// Left to the transport, which then decodes compressed bodies itself.
	out.Header.Del("Accept-Encoding")

	resp, err := f.client.Do(out)
	if err != nil {
		return nil, domain.UpstreamError{Method: r.Method, URL: target, Err: err}
	}
	return resp, nil
}

// TargetURL maps an inbound URL onto the upstream origin.
func (f *Forwarder) TargetURL(in *url.URL) string {
	base := strings.TrimSuffix(f.upstream.String(), "/")
	return base + in.RequestURI()
}

func copyResponseHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
	for _, h := range strippedResponseHeaders {
		dst.Del(h)
	}
}

// IsSelfLoop reports whether upstream points back at listenAddr on this
// host, which would make every forwarded request recurse.
func IsSelfLoop(upstream *url.URL, listenAddr string) bool {
	_, listenPort, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return false
	}

	port := upstream.Port()
	if port == "" {
		switch upstream.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	if port != listenPort {
		return false
	}

	host := upstream.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

var _ http.Handler = (*Forwarder)(nil)
