package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

// cmsSignature fingerprints one content management system. Signatures are
// tested in table order against lowercased HTML; the first match wins, so
// more specific systems come first. Version patterns are tried in order and
// the first capturing match wins.
type cmsSignature struct {
	Name     string
	Patterns []string
	Versions []*regexp.Regexp
}

var cmsSignatures = []cmsSignature{
	{
		Name:     "WordPress",
		Patterns: []string{"/wp-content/", "/wp-includes/", "wp-json"},
		Versions: []*regexp.Regexp{
			regexp.MustCompile(`<meta name="generator" content="wordpress ([0-9.]+)`),
			regexp.MustCompile(`wp-embed\.min\.js\?ver=([0-9.]+)`),
		},
	},
	{
		Name:     "Joomla",
		Patterns: []string{"/media/jui/", "com_content", "joomla"},
		Versions: []*regexp.Regexp{
			regexp.MustCompile(`<meta name="generator" content="joomla! ([0-9.]+)`),
		},
	},
	{
		Name:     "Drupal",
		Patterns: []string{"drupal-settings-json", "/sites/default/files", "drupal"},
		Versions: []*regexp.Regexp{
			regexp.MustCompile(`<meta name="generator" content="drupal ([0-9.]+)`),
		},
	},
	{
		Name:     "Magento",
		Patterns: []string{"/skin/frontend/", "mage/cookies", "magento"},
	},
	{
		Name:     "Shopify",
		Patterns: []string{"cdn.shopify.com", "shopify"},
	},
	{
		Name:     "Wix",
		Patterns: []string{"static.parastorage.com", "wix.com"},
	},
	{
		Name:     "Squarespace",
		Patterns: []string{"static1.squarespace.com", "squarespace"},
	},
	{
		Name:     "Ghost",
		Patterns: []string{"ghost.min.js", "data-ghost"},
		Versions: []*regexp.Regexp{
			regexp.MustCompile(`<meta name="generator" content="ghost ([0-9.]+)`),
		},
	},
	{
		Name:     "TYPO3",
		Patterns: []string{"typo3temp", "typo3"},
	},
	{
		Name:     "PrestaShop",
		Patterns: []string{"prestashop"},
	},
}

// WordPress endpoints that allow enumerating author accounts.
var wpUserEnumMarkers = []string{"/author/", "wp-json/wp/v2/users"}

// analyzeCMS fingerprints the fetched page and scores CMS hygiene.
// Pure function over the page body.
func analyzeCMS(page Page) *CategoryResult {
	html := strings.ToLower(page.HTML)
	score := 100
	findings := []Finding{}

	name, version := detectCMS(html)
	if name == "" {
		return &CategoryResult{
			Status: StatusPass,
			Score:  intPtr(score),
			Findings: []Finding{{
				ID:          "cms-none",
				Name:        "No CMS Detected",
				Status:      StatusPass,
				Severity:    SeverityInfo,
				Description: "No known CMS fingerprint was found on the page.",
			}},
			Details: map[string]any{"cms": ""},
		}
	}

	detected := Finding{
		ID:          "cms-detected",
		Name:        "CMS Detected",
		Status:      StatusPass,
		Severity:    SeverityInfo,
		Description: name + " was identified from page markup.",
		Details:     map[string]any{"cms": name, "version": version},
	}
	findings = append(findings, detected)

	if name == "WordPress" {
		if major, ok := majorVersion(version); ok && major < 6 {
			score -= 30
			findings = append(findings, Finding{
				ID:          "cms-outdated",
				Name:        "Outdated CMS Version",
				Status:      StatusFail,
				Severity:    SeverityHigh,
				Description: "WordPress " + version + " is behind the current major release.",
				Details:     map[string]any{"version": version},
				Remediation: &Remediation{
					WhatItMeans: "Old WordPress cores miss years of security fixes and are routinely targeted by automated exploits.",
					HowToFix:    "Update WordPress core (and plugins/themes) to the latest release, then enable automatic updates.",
				},
			})
		}
		if containsAny(html, wpUserEnumMarkers) {
			score -= 10
			findings = append(findings, Finding{
				ID:          "cms-user-enum",
				Name:        "User Enumeration Possible",
				Status:      StatusWarning,
				Severity:    SeverityMedium,
				Description: "The page exposes author archives or the REST users endpoint.",
				Remediation: &Remediation{
					WhatItMeans: "Attackers can list valid usernames and use them for credential stuffing.",
					HowToFix:    "Disable author archives and restrict /wp-json/wp/v2/users to authenticated requests.",
				},
			})
		}
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 80, 50),
		Score:    intPtr(score),
		Findings: findings,
		Details:  map[string]any{"cms": name, "version": version},
	}
}

// detectCMS returns the first matching CMS and its version, if extractable.
func detectCMS(lowerHTML string) (name, version string) {
	if lowerHTML == "" {
		return "", ""
	}
	for _, sig := range cmsSignatures {
		if !containsAny(lowerHTML, sig.Patterns) {
			continue
		}
		for _, re := range sig.Versions {
			if m := re.FindStringSubmatch(lowerHTML); len(m) > 1 {
				return sig.Name, strings.Trim(m[1], ".")
			}
		}
		return sig.Name, ""
	}
	return "", ""
}

// majorVersion parses the leading component of a dotted version string.
func majorVersion(version string) (int, bool) {
	if version == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return major, true
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
