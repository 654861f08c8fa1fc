package sinks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/fieldkeeper/internal/netx"
)

// HTTPSink PUTs documents to <base>/<name>, e.g. a WebDAV share or a
// reporting endpoint of the head office.
type HTTPSink struct {
	base   string
	client *http.Client
}

func NewHTTPSink(base string, client *http.Client) (*HTTPSink, error) {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid upload url %q", base)
	}
	return &HTTPSink{base: strings.TrimRight(base, "/"), client: client}, nil
}

func (s *HTTPSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	target := s.base + "/" + url.PathEscape(name)
	if err := netx.Put(ctx, s.client, target, xlsxContentType, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return target, nil
}
