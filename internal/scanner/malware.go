package scanner

import "regexp"

// malwareSignature is one static pattern matched against the raw page body.
// Matching is best-effort heuristics over a single fetched document (no
// script execution, no linked-resource fetching), so it catches common
// injection artifacts rather than determined obfuscation.
type malwareSignature struct {
	ID          string
	Name        string
	Severity    Severity
	Pattern     *regexp.Regexp
	Description string
	HowToFix    string
}

// malwareDeductions maps signature severity to score deduction.
var malwareDeductions = map[Severity]int{
	SeverityCritical: 40,
	SeverityHigh:     25,
	SeverityMedium:   15,
}

var malwareSignatures = []malwareSignature{
	{
		ID:          "malware-eval-base64",
		Name:        "Base64-Wrapped Eval",
		Severity:    SeverityCritical,
		Pattern:     regexp.MustCompile(`(?i)eval\s*\(\s*(?:atob|base64_decode)\s*\(`),
		Description: "A script decodes base64 content and passes it straight to eval(), a hallmark of injected payloads.",
		HowToFix:    "Treat the site as compromised: restore from a clean backup, rotate credentials, and patch the entry point.",
	},
	{
		ID:          "malware-doc-write-unescape",
		Name:        "Obfuscated document.write",
		Severity:    SeverityHigh,
		Pattern:     regexp.MustCompile(`(?i)document\.write\s*\(\s*unescape\s*\(`),
		Description: "document.write(unescape(...)) is a classic pattern for hiding injected markup from casual review.",
		HowToFix:    "Locate and remove the injected script, then audit how it was planted.",
	},
	{
		ID:          "malware-hidden-iframe",
		Name:        "Hidden Iframe",
		Severity:    SeverityHigh,
		Pattern:     regexp.MustCompile(`(?i)<iframe[^>]*(?:width\s*=\s*["']?0["']?|height\s*=\s*["']?0["']?|style\s*=\s*["'][^"']*(?:display\s*:\s*none|visibility\s*:\s*hidden))[^>]*>`),
		Description: "An invisible iframe is embedded in the page, a common vehicle for drive-by downloads.",
		HowToFix:    "Remove the iframe and scan the server for the code that injects it.",
	},
	{
		ID:          "malware-charcode-chain",
		Name:        "Long fromCharCode Chain",
		Severity:    SeverityMedium,
		Pattern:     regexp.MustCompile(`(?i)string\.fromcharcode\s*\((?:\s*\d+\s*,){20,}`),
		Description: "A long String.fromCharCode sequence builds a string character by character to evade signature scanners.",
		HowToFix:    "Decode the sequence to confirm what it does and remove it if unexpected.",
	},
	{
		ID:          "malware-bad-script-host",
		Name:        "Suspicious External Script",
		Severity:    SeverityCritical,
		Pattern:     regexp.MustCompile(`(?i)<script[^>]+src\s*=\s*["'][^"']*(?:iplogger|coinhive|cryptoloot|evil\.js)[^"']*["']`),
		Description: "The page loads a script from a host associated with credential logging or cryptomining.",
		HowToFix:    "Remove the script tag and investigate how it was added.",
	},
}

// analyzeMalware runs every signature against the raw (non-lowercased)
// page body. Pure function.
func analyzeMalware(page Page) *CategoryResult {
	score := 100
	findings := []Finding{}
	matched := 0

	for _, sig := range malwareSignatures {
		if page.HTML == "" || !sig.Pattern.MatchString(page.HTML) {
			continue
		}
		matched++
		score -= malwareDeductions[sig.Severity]
		findings = append(findings, Finding{
			ID:          sig.ID,
			Name:        sig.Name,
			Status:      StatusFail,
			Severity:    sig.Severity,
			Description: sig.Description,
			Remediation: &Remediation{
				WhatItMeans: "Pattern matching on the homepage suggests injected or malicious code. Static matching cannot prove intent, so verify manually.",
				HowToFix:    sig.HowToFix,
			},
		})
	}

	if len(findings) == 0 {
		findings = append(findings, Finding{
			ID:          "malware-clean",
			Name:        "No Malware Signatures",
			Status:      StatusPass,
			Severity:    SeverityInfo,
			Description: "No known malware signatures matched the page. Static matching over one page is a best-effort signal, not a guarantee.",
		})
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 80, 50),
		Score:    intPtr(score),
		Findings: findings,
		Details:  map[string]any{"signatures": len(malwareSignatures), "matched": matched},
	}
}
