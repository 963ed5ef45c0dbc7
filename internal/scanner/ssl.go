package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strconv"
	"time"

	consts "github.com/sitegrade/sitegrade/internal/shared/constants"
)

// certFacts captures what the TLS probe learned about the peer certificate.
// Chain trust is evaluated separately from the handshake: verification is
// disabled at the transport layer so an invalid chain can still be inspected.
type certFacts struct {
	Retrieved bool
	Subject   string
	Issuer    string
	NotBefore time.Time
	NotAfter  time.Time
	DNSNames  []string
	Trusted   bool
	TrustErr  string
}

// checkSSL opens a raw TLS connection to hostname:443, extracts the peer
// certificate, and scores it. Connection failures never propagate: they are
// folded into a degraded CategoryResult.
func (s *Scanner) checkSSL(ctx context.Context, target Target) *CategoryResult {
	dialCtx, cancel := context.WithTimeout(ctx, s.tlsTimeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.tlsTimeout},
		Config: &tls.Config{
			ServerName: target.Hostname,
			// Verification stays off so expired or self-signed chains can
			// still be inspected; trust is evaluated below on its own.
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(target.Hostname, "443"))
	if err != nil {
		if isTimeout(err) {
			return &CategoryResult{
				Status: StatusWarning,
				Score:  intPtr(50),
				Findings: []Finding{{
					ID:          "ssl-timeout",
					Name:        "SSL Check Timed Out",
					Status:      StatusWarning,
					Severity:    SeverityMedium,
					Description: "The TLS handshake did not complete within the probe deadline.",
				}},
			}
		}
		return &CategoryResult{
			Status: StatusError,
			Score:  intPtr(0),
			Findings: []Finding{{
				ID:          "ssl-error",
				Name:        "SSL Check Failed",
				Status:      StatusError,
				Severity:    SeverityHigh,
				Description: "Could not establish a TLS connection: " + err.Error(),
			}},
		}
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	facts := extractCertFacts(state, target.Hostname)
	return scoreCertificate(facts, time.Now())
}

// extractCertFacts reduces a handshake state to the facts the scorer needs,
// running an independent chain verification against the system trust store.
func extractCertFacts(state tls.ConnectionState, hostname string) certFacts {
	if len(state.PeerCertificates) == 0 {
		return certFacts{}
	}

	leaf := state.PeerCertificates[0]
	facts := certFacts{
		Retrieved: true,
		Subject:   leaf.Subject.String(),
		Issuer:    leaf.Issuer.String(),
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
		DNSNames:  leaf.DNSNames,
	}

	intermediates := x509.NewCertPool()
	for _, cert := range state.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}
	_, err := leaf.Verify(x509.VerifyOptions{
		DNSName:       hostname,
		Intermediates: intermediates,
	})
	if err != nil {
		facts.TrustErr = err.Error()
	} else {
		facts.Trusted = true
	}
	return facts
}

// scoreCertificate turns certificate facts into a CategoryResult. Pure
// function: identical facts and clock always yield the same result.
func scoreCertificate(facts certFacts, now time.Time) *CategoryResult {
	if !facts.Retrieved {
		return &CategoryResult{
			Status: StatusFail,
			Score:  intPtr(20),
			Findings: []Finding{{
				ID:          "ssl-none",
				Name:        "No SSL Certificate",
				Status:      StatusFail,
				Severity:    SeverityCritical,
				Description: "The server did not present an SSL certificate.",
				Remediation: &Remediation{
					WhatItMeans: "Traffic to this site is not protected by TLS, so anything visitors send can be read or altered in transit.",
					HowToFix:    "Install a certificate from a trusted authority (for example via Let's Encrypt) and serve the site over HTTPS.",
				},
			}},
		}
	}

	score := 100
	findings := []Finding{}
	daysRemaining := int(facts.NotAfter.Sub(now).Hours() / 24)

	switch {
	case facts.NotAfter.Before(now):
		score = 0
		findings = append(findings, Finding{
			ID:          "ssl-expired",
			Name:        "SSL Certificate Expired",
			Status:      StatusFail,
			Severity:    SeverityCritical,
			Description: "The certificate expired on " + facts.NotAfter.Format("2006-01-02") + ".",
			Details:     map[string]any{"issuer": facts.Issuer, "not_after": facts.NotAfter.Format(time.RFC3339)},
			Remediation: &Remediation{
				WhatItMeans: "Browsers show a full-page security warning for expired certificates and most visitors will leave.",
				HowToFix:    "Renew the certificate immediately and enable automated renewal so it cannot lapse again.",
			},
		})
	case facts.NotAfter.Sub(now) < consts.CertExpiryWarningWindow:
		score -= 20
		findings = append(findings, Finding{
			ID:          "ssl-expiring-soon",
			Name:        "SSL Certificate Expiring Soon",
			Status:      StatusWarning,
			Severity:    SeverityMedium,
			Description: "The certificate expires in " + strconv.Itoa(daysRemaining) + " day(s).",
			Details:     map[string]any{"issuer": facts.Issuer, "days_remaining": daysRemaining},
			Remediation: &Remediation{
				WhatItMeans: "Once the certificate lapses the site becomes unreachable for most visitors.",
				HowToFix:    "Renew before the expiry date and set up automated renewal.",
			},
		})
	default:
		findings = append(findings, Finding{
			ID:          "ssl-valid",
			Name:        "Valid SSL Certificate",
			Status:      StatusPass,
			Severity:    SeverityInfo,
			Description: "The certificate is valid for another " + strconv.Itoa(daysRemaining) + " day(s).",
			Details: map[string]any{
				"issuer":         facts.Issuer,
				"not_after":      facts.NotAfter.Format(time.RFC3339),
				"days_remaining": daysRemaining,
			},
		})
	}

	if facts.Trusted {
		findings = append(findings, Finding{
			ID:          "ssl-trusted",
			Name:        "Certificate Trusted",
			Status:      StatusPass,
			Severity:    SeverityInfo,
			Description: "The certificate chain verifies against the system trust store.",
		})
	} else {
		score -= 30
		findings = append(findings, Finding{
			ID:          "ssl-untrusted",
			Name:        "Certificate Not Trusted",
			Status:      StatusFail,
			Severity:    SeverityHigh,
			Description: "The certificate chain does not verify: " + facts.TrustErr,
			Remediation: &Remediation{
				WhatItMeans: "Browsers cannot confirm this certificate belongs to the site, so visitors see trust warnings.",
				HowToFix:    "Serve the full chain from a publicly trusted authority and make sure the certificate matches the hostname.",
			},
		})
	}

	score = clampScore(score)
	return &CategoryResult{
		Status:   statusForScore(score, 80, 50),
		Score:    intPtr(score),
		Findings: findings,
		Details:  map[string]any{"issuer": facts.Issuer, "days_remaining": daysRemaining},
	}
}

// isTimeout reports whether err represents a deadline, either from the
// dialer or the surrounding context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
