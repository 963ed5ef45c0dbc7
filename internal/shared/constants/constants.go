// Package constants centralizes configuration defaults shared across the CLI.
//
// Keeping probe timeouts, the body capture cap, and concurrency defaults in
// one place prevents magic numbers from scattering across cmd/ and internal/.
package constants

import "time"

const (
	// TLSProbeTimeout bounds the raw TLS handshake used for certificate
	// inspection.
	TLSProbeTimeout = 10 * time.Second
	// HeadersProbeTimeout bounds the HEAD request used for the security
	// header audit.
	HeadersProbeTimeout = 10 * time.Second
	// PageFetchTimeout bounds the single GET of the origin root whose body
	// feeds the CMS, malware, and performance analyzers.
	PageFetchTimeout = 15 * time.Second
	// PathProbeTimeout bounds each exposed-path HEAD request.
	PathProbeTimeout = 5 * time.Second
	// ScanDeadline caps a whole scan so a misconfigured probe timeout can
	// never hang a caller.
	ScanDeadline = 60 * time.Second
)

const (
	// PageBodyLimitBytes caps how much of the origin page we capture for
	// analysis. Reading stops once the limit is reached.
	PageBodyLimitBytes = 500 * 1024

	// DefaultPathWorkers bounds concurrent exposed-path probes so a scan
	// never fans out unbounded against a single origin.
	DefaultPathWorkers = 4

	// DefaultRequestsPerSecond is the per-origin request budget applied to
	// the exposed-path probe batch.
	DefaultRequestsPerSecond = 8
)

// UserAgent identifies scan traffic to remote operators.
const UserAgent = "sitegrade-scanner/1.0 (+https://github.com/sitegrade/sitegrade)"

const (
	// CertExpiryWarningWindow flags certificates expiring inside this window.
	CertExpiryWarningWindow = 30 * 24 * time.Hour
	// HeaderValueTruncateLen caps header values echoed into finding details.
	HeaderValueTruncateLen = 120
)
