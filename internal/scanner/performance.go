package scanner

import "regexp"

// jQuery asset references like jquery-1.12.4.min.js or jquery/3.6.0/jquery.js.
var jqueryVersionPattern = regexp.MustCompile(`(?i)jquery[/.-]{1,2}(\d+\.\d+(?:\.\d+)?)`)

// Plain-http subresources on the page (mixed content when served over HTTPS).
var mixedContentPattern = regexp.MustCompile(`(?i)<(?:script|img|iframe|link|source|video|audio)[^>]+(?:src|href)\s*=\s*["']http://`)

// analyzePerformance checks the fetched page for aging front-end technology
// and insecure resource loading. Pure function over the page body.
func analyzePerformance(page Page, target Target) *CategoryResult {
	score := 100
	findings := []Finding{}

	if m := jqueryVersionPattern.FindStringSubmatch(page.HTML); len(m) > 1 {
		version := m[1]
		if major, ok := majorVersion(version); ok && major < 3 {
			score -= 20
			findings = append(findings, Finding{
				ID:          "perf-jquery-outdated",
				Name:        "Outdated jQuery",
				Status:      StatusWarning,
				Severity:    SeverityMedium,
				Description: "jQuery " + version + " predates the 3.x line and carries known XSS issues.",
				Details:     map[string]any{"version": version},
				Remediation: &Remediation{
					WhatItMeans: "Old jQuery builds contain publicly documented cross-site scripting bugs.",
					HowToFix:    "Upgrade to jQuery 3.5.0 or later, or drop the dependency.",
				},
			})
		}
	}

	if target.Scheme == "https" && page.HTML != "" && mixedContentPattern.MatchString(page.HTML) {
		score -= 15
		findings = append(findings, Finding{
			ID:          "perf-mixed-content",
			Name:        "Mixed Content",
			Status:      StatusWarning,
			Severity:    SeverityMedium,
			Description: "The HTTPS page loads resources over plain http://, which browsers block or flag.",
			Remediation: &Remediation{
				WhatItMeans: "Plain-http subresources can be tampered with in transit and break the padlock indicator.",
				HowToFix:    "Reference all scripts, styles, and media with https:// (or protocol-relative) URLs.",
			},
		})
	}

	if len(findings) == 0 {
		findings = append(findings, Finding{
			ID:          "perf-clean",
			Name:        "Tech Stack Check",
			Status:      StatusPass,
			Severity:    SeverityInfo,
			Description: "No outdated libraries or mixed-content issues were detected on the page.",
		})
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 80, 50),
		Score:    intPtr(score),
		Findings: findings,
	}
}
