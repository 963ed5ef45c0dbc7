package scanner

import (
	"context"
	"net/http"

	consts "github.com/sitegrade/sitegrade/internal/shared/constants"
)

// headerSpec defines one security header check. Severity is fixed per header
// and drives both the deduction and the finding severity when missing.
type headerSpec struct {
	Header      string
	ID          string
	Severity    Severity
	Description string
	HowToFix    string
}

// headerDeductions maps header severity to the points removed when the
// header is absent.
var headerDeductions = map[Severity]int{
	SeverityHigh:   15,
	SeverityMedium: 10,
	SeverityLow:    5,
}

// headerSpecs is the fixed audit table, in report order.
var headerSpecs = []headerSpec{
	{
		Header:      "Strict-Transport-Security",
		ID:          "hsts",
		Severity:    SeverityHigh,
		Description: "Forces browsers to only connect over HTTPS.",
		HowToFix:    "Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains'.",
	},
	{
		Header:      "Content-Security-Policy",
		ID:          "csp",
		Severity:    SeverityHigh,
		Description: "Restricts which sources scripts, styles, and frames may load from.",
		HowToFix:    "Add a Content-Security-Policy appropriate for your application, starting from default-src 'self'.",
	},
	{
		Header:      "X-Frame-Options",
		ID:          "x-frame-options",
		Severity:    SeverityMedium,
		Description: "Prevents the site from being embedded in frames (clickjacking).",
		HowToFix:    "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN'.",
	},
	{
		Header:      "X-Content-Type-Options",
		ID:          "x-content-type-options",
		Severity:    SeverityMedium,
		Description: "Stops browsers from MIME-sniffing responses away from the declared type.",
		HowToFix:    "Add 'X-Content-Type-Options: nosniff'.",
	},
	{
		Header:      "X-XSS-Protection",
		ID:          "x-xss-protection",
		Severity:    SeverityLow,
		Description: "Legacy cross-site scripting filter for older browsers.",
		HowToFix:    "Add 'X-XSS-Protection: 1; mode=block' (or rely on a strong CSP).",
	},
	{
		Header:      "Referrer-Policy",
		ID:          "referrer-policy",
		Severity:    SeverityLow,
		Description: "Controls how much referrer information leaves the site.",
		HowToFix:    "Add 'Referrer-Policy: strict-origin-when-cross-origin'.",
	},
	{
		Header:      "Permissions-Policy",
		ID:          "permissions-policy",
		Severity:    SeverityLow,
		Description: "Limits which browser features (camera, geolocation, ...) pages may use.",
		HowToFix:    "Add 'Permissions-Policy: geolocation=(), microphone=(), camera=()'.",
	},
}

// checkHeaders issues one HEAD request against the origin root and audits
// the response against the fixed header table.
func (s *Scanner) checkHeaders(ctx context.Context, target Target) *CategoryResult {
	reqCtx, cancel := context.WithTimeout(ctx, s.headersTimeout)
	defer cancel()

	headers, err := s.fetchHeaders(reqCtx, target.Origin)
	if err != nil {
		if isTimeout(err) {
			return &CategoryResult{
				Status: StatusWarning,
				Score:  intPtr(50),
				Findings: []Finding{{
					ID:          "headers-timeout",
					Name:        "Header Check Timed Out",
					Status:      StatusWarning,
					Severity:    SeverityMedium,
					Description: "The server did not respond within the probe deadline.",
				}},
			}
		}
		return &CategoryResult{
			Status: StatusError,
			Score:  intPtr(0),
			Findings: []Finding{{
				ID:          "headers-error",
				Name:        "Header Check Failed",
				Status:      StatusError,
				Severity:    SeverityHigh,
				Description: "Could not fetch response headers: " + err.Error(),
			}},
		}
	}

	return scoreHeaders(headers)
}

// fetchHeaders tries HEAD first and falls back to GET for servers that
// reject HEAD outright.
func (s *Scanner) fetchHeaders(ctx context.Context, origin string) (http.Header, error) {
	client := &http.Client{Timeout: s.headersTimeout}

	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, origin, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := client.Do(req)
		if err != nil {
			if method == http.MethodGet || isTimeout(err) {
				return nil, err
			}
			continue
		}
		resp.Body.Close()
		return resp.Header, nil
	}
	return nil, http.ErrNotSupported
}

// scoreHeaders audits a header set against the fixed table. One finding per
// header, in table order.
func scoreHeaders(headers http.Header) *CategoryResult {
	score := 100
	findings := make([]Finding, 0, len(headerSpecs))
	missing := 0

	for _, spec := range headerSpecs {
		value := headers.Get(spec.Header)
		if value != "" {
			findings = append(findings, Finding{
				ID:          "headers-" + spec.ID,
				Name:        spec.Header,
				Status:      StatusPass,
				Severity:    SeverityInfo,
				Description: spec.Header + " is set.",
				Details:     map[string]any{"value": truncate(value, consts.HeaderValueTruncateLen)},
			})
			continue
		}

		missing++
		score -= headerDeductions[spec.Severity]
		status := StatusWarning
		if spec.Severity == SeverityHigh {
			status = StatusFail
		}
		findings = append(findings, Finding{
			ID:          "headers-" + spec.ID,
			Name:        "Missing " + spec.Header,
			Status:      status,
			Severity:    spec.Severity,
			Description: spec.Header + " is not set. " + spec.Description,
			Remediation: &Remediation{
				WhatItMeans: spec.Description,
				HowToFix:    spec.HowToFix,
			},
		})
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 70, 40),
		Score:    intPtr(score),
		Findings: findings,
		Details:  map[string]any{"missing": missing},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
