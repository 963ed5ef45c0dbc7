package scanner

import (
	"context"
	"io"
	"net/http"

	consts "github.com/sitegrade/sitegrade/internal/shared/constants"
)

// Page is the captured origin root document. It is fetched once per scan
// and shared read-only by the CMS, malware, and performance analyzers.
// A zero Page means the fetch failed; analyzers treat empty HTML as
// "no signal", never as an error to halt on.
type Page struct {
	HTML       string
	StatusCode int
	Headers    http.Header
}

// fetchPage GETs the origin root, capping the captured body. Reading stops
// once the cap is reached; the connection is closed rather than drained.
func (s *Scanner) fetchPage(ctx context.Context, target Target) Page {
	reqCtx, cancel := context.WithTimeout(ctx, s.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.Origin, nil)
	if err != nil {
		return Page{Headers: http.Header{}}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := &http.Client{Timeout: s.pageTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Page{Headers: http.Header{}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, consts.PageBodyLimitBytes))
	if err != nil && len(body) == 0 {
		return Page{Headers: http.Header{}}
	}

	return Page{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
	}
}
