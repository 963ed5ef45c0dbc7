package scanner

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// sensitivePath describes one commonly-exposed file or endpoint. The table
// is fixed: severity, description, and remediation text are static per path.
type sensitivePath struct {
	Path        string
	Severity    Severity
	Description string
	WhatItMeans string
	HowToFix    string
}

var sensitivePaths = []sensitivePath{
	{
		Path:        "/.env",
		Severity:    SeverityCritical,
		Description: "Environment file with credentials and API keys",
		WhatItMeans: "Anyone can download database passwords, API keys, and application secrets.",
		HowToFix:    "Block access to dotfiles in the web server config and move .env outside the web root.",
	},
	{
		Path:        "/.git/config",
		Severity:    SeverityCritical,
		Description: "Git repository metadata",
		WhatItMeans: "The full source history, including deleted secrets, can often be reconstructed from an exposed .git directory.",
		HowToFix:    "Deny access to the .git directory or deploy build artifacts instead of the repository itself.",
	},
	{
		Path:        "/wp-config.php.bak",
		Severity:    SeverityCritical,
		Description: "WordPress configuration backup",
		WhatItMeans: "Backup copies of wp-config.php are served as plain text and contain the database password.",
		HowToFix:    "Delete editor/backup copies of configuration files from the web root.",
	},
	{
		Path:        "/backup.sql",
		Severity:    SeverityCritical,
		Description: "Database dump",
		WhatItMeans: "A full copy of the database, including user records and password hashes, is downloadable.",
		HowToFix:    "Remove database dumps from the web root and store backups in private storage.",
	},
	{
		Path:        "/database.sql",
		Severity:    SeverityCritical,
		Description: "Database dump",
		WhatItMeans: "A full copy of the database, including user records and password hashes, is downloadable.",
		HowToFix:    "Remove database dumps from the web root and store backups in private storage.",
	},
	{
		Path:        "/phpinfo.php",
		Severity:    SeverityHigh,
		Description: "PHP configuration disclosure",
		WhatItMeans: "phpinfo() reveals exact software versions, loaded modules, and file paths attackers can target.",
		HowToFix:    "Delete phpinfo.php from production servers.",
	},
	{
		Path:        "/.svn/entries",
		Severity:    SeverityHigh,
		Description: "Subversion repository metadata",
		WhatItMeans: "Exposed SVN metadata lets attackers download source files directly.",
		HowToFix:    "Deny access to the .svn directory or export the code instead of checking it out on the server.",
	},
	{
		Path:        "/.htpasswd",
		Severity:    SeverityHigh,
		Description: "HTTP auth credential file",
		WhatItMeans: "Password hashes used for HTTP authentication can be downloaded and cracked offline.",
		HowToFix:    "Move .htpasswd outside the web root and block dotfile access.",
	},
	{
		Path:        "/server-status",
		Severity:    SeverityMedium,
		Description: "Apache status page",
		WhatItMeans: "The status page leaks internal IPs, request URLs, and client addresses in real time.",
		HowToFix:    "Restrict mod_status to localhost or disable it.",
	},
	{
		Path:        "/error_log",
		Severity:    SeverityMedium,
		Description: "Server error log",
		WhatItMeans: "Error logs reveal file paths, stack traces, and sometimes user data.",
		HowToFix:    "Write logs outside the web root and block access to log files.",
	},
	{
		Path:        "/composer.lock",
		Severity:    SeverityMedium,
		Description: "Dependency lock file",
		WhatItMeans: "Exact dependency versions let attackers match known CVEs to your stack.",
		HowToFix:    "Block access to composer files in the web server config.",
	},
	{
		Path:        "/.idea/workspace.xml",
		Severity:    SeverityLow,
		Description: "IDE project metadata",
		WhatItMeans: "IDE files disclose project structure and developer file paths.",
		HowToFix:    "Exclude IDE directories from deployments.",
	},
	{
		Path:        "/.DS_Store",
		Severity:    SeverityLow,
		Description: "macOS folder metadata",
		WhatItMeans: ".DS_Store files list directory contents, exposing files that were meant to stay hidden.",
		HowToFix:    "Exclude .DS_Store from deployments and block access to it.",
	},
}

// exposedDeductions maps path severity to score deduction.
var exposedDeductions = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     15,
	SeverityMedium:   10,
	SeverityLow:      5,
}

// checkExposedFiles probes every entry of the sensitive-path table with a
// bounded worker pool gated by the scanner's per-origin rate limiter.
// Individual request failures fail closed: an unreachable path is treated
// as not exposed, never escalated to a scan-level error.
func (s *Scanner) checkExposedFiles(ctx context.Context, target Target) *CategoryResult {
	client := &http.Client{Timeout: s.pathTimeout}

	exposed := make([]bool, len(sensitivePaths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.pathWorkers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := s.limiter.Wait(ctx); err != nil {
					return
				}
				exposed[idx] = s.probePath(ctx, client, target.Origin+sensitivePaths[idx].Path)
			}
		}()
	}

	for idx := range sensitivePaths {
		select {
		case jobs <- idx:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	return scoreExposedPaths(exposed)
}

// probePath reports whether a single path looks reachable. Exposed means a
// status in [200,400) that is not 403.
func (s *Scanner) probePath(ctx context.Context, client *http.Client, url string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, s.pathTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400 && resp.StatusCode != 403
}

// scoreExposedPaths reduces per-path exposure flags to a CategoryResult,
// emitting findings in table order so output stays deterministic.
func scoreExposedPaths(exposed []bool) *CategoryResult {
	score := 100
	findings := []Finding{}
	count := 0

	for idx, p := range sensitivePaths {
		if idx >= len(exposed) || !exposed[idx] {
			continue
		}
		count++
		score -= exposedDeductions[p.Severity]

		status := StatusWarning
		if p.Severity == SeverityCritical || p.Severity == SeverityHigh {
			status = StatusFail
		}
		findings = append(findings, Finding{
			ID:          "exposed-" + pathID(p.Path),
			Name:        "Exposed: " + p.Path,
			Status:      status,
			Severity:    p.Severity,
			Description: p.Description + " is publicly reachable at " + p.Path + ".",
			Details:     map[string]any{"path": p.Path},
			Remediation: &Remediation{
				WhatItMeans: p.WhatItMeans,
				HowToFix:    p.HowToFix,
			},
		})
	}

	if count == 0 {
		findings = append(findings, Finding{
			ID:          "exposed-none",
			Name:        "No Exposed Files",
			Status:      StatusPass,
			Severity:    SeverityInfo,
			Description: "None of the commonly-exposed sensitive paths responded.",
		})
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 80, 50),
		Score:    intPtr(score),
		Findings: findings,
		Details:  map[string]any{"exposed": count, "checked": len(sensitivePaths)},
	}
}

// pathID derives a stable finding ID fragment from a path, e.g.
// "/.git/config" -> "git-config".
func pathID(path string) string {
	path = strings.ToLower(path)
	out := make([]rune, 0, len(path))
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
