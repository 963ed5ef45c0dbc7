package scanner

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

func TestScoreCertificate_NoCertificate(t *testing.T) {
	result := scoreCertificate(certFacts{}, time.Now())

	if result.Score == nil || *result.Score != 20 {
		t.Fatalf("expected score 20, got %v", result.Score)
	}
	if result.Status != StatusFail {
		t.Errorf("expected status fail, got %s", result.Status)
	}
	if len(result.Findings) != 1 || result.Findings[0].ID != "ssl-none" {
		t.Errorf("expected single ssl-none finding, got %+v", result.Findings)
	}
	if result.Findings[0].Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", result.Findings[0].Severity)
	}
}

func TestScoreCertificate_Expired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	facts := certFacts{
		Retrieved: true,
		Issuer:    "CN=Test CA",
		NotAfter:  now.Add(-24 * time.Hour),
		TrustErr:  "certificate has expired",
	}

	result := scoreCertificate(facts, now)

	if result.Score == nil || *result.Score != 0 {
		t.Fatalf("expected score 0 for expired cert, got %v", result.Score)
	}
	if result.Status != StatusFail {
		t.Errorf("expected status fail, got %s", result.Status)
	}
	first := result.Findings[0]
	if first.ID != "ssl-expired" {
		t.Errorf("expected first finding ssl-expired, got %s", first.ID)
	}
	if first.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", first.Severity)
	}
}

func TestScoreCertificate_ExpiringSoon(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	facts := certFacts{
		Retrieved: true,
		Issuer:    "CN=Test CA",
		NotAfter:  now.Add(10 * 24 * time.Hour),
		Trusted:   true,
	}

	result := scoreCertificate(facts, now)

	if result.Score == nil || *result.Score != 80 {
		t.Fatalf("expected score 80, got %v", result.Score)
	}
	if result.Status != StatusPass {
		t.Errorf("expected status pass at 80, got %s", result.Status)
	}
	if result.Findings[0].ID != "ssl-expiring-soon" {
		t.Errorf("expected ssl-expiring-soon finding, got %s", result.Findings[0].ID)
	}
}

func TestScoreCertificate_ValidUntrusted(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	facts := certFacts{
		Retrieved: true,
		Issuer:    "CN=Self Signed",
		NotAfter:  now.Add(365 * 24 * time.Hour),
		TrustErr:  "x509: certificate signed by unknown authority",
	}

	result := scoreCertificate(facts, now)

	if result.Score == nil || *result.Score != 70 {
		t.Fatalf("expected score 70, got %v", result.Score)
	}
	if result.Status != StatusWarning {
		t.Errorf("expected status warning, got %s", result.Status)
	}

	var untrusted *Finding
	for i := range result.Findings {
		if result.Findings[i].ID == "ssl-untrusted" {
			untrusted = &result.Findings[i]
		}
	}
	if untrusted == nil {
		t.Fatal("expected ssl-untrusted finding")
	}
	if untrusted.Severity != SeverityHigh {
		t.Errorf("expected high severity, got %s", untrusted.Severity)
	}
}

func TestScoreCertificate_ValidTrusted(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	facts := certFacts{
		Retrieved: true,
		Issuer:    "CN=Good CA",
		NotAfter:  now.Add(365 * 24 * time.Hour),
		Trusted:   true,
	}

	result := scoreCertificate(facts, now)

	if result.Score == nil || *result.Score != 100 {
		t.Fatalf("expected score 100, got %v", result.Score)
	}
	if result.Status != StatusPass {
		t.Errorf("expected status pass, got %s", result.Status)
	}
	if len(result.Findings) != 2 {
		t.Fatalf("expected valid + trusted findings, got %d", len(result.Findings))
	}
	if result.Findings[0].ID != "ssl-valid" || result.Findings[1].ID != "ssl-trusted" {
		t.Errorf("unexpected finding order: %s, %s", result.Findings[0].ID, result.Findings[1].ID)
	}
}

func TestExtractCertFacts_SelfSignedUntrusted(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "selfsigned.test"},
		DNSNames:     []string{"selfsigned.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(90 * 24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}

	state := tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
	facts := extractCertFacts(state, "selfsigned.test")

	if !facts.Retrieved {
		t.Fatal("expected facts.Retrieved")
	}
	if facts.Trusted {
		t.Error("self-signed certificate must not verify as trusted")
	}
	if facts.TrustErr == "" {
		t.Error("expected a trust error for self-signed certificate")
	}
	if !facts.NotAfter.Equal(cert.NotAfter) {
		t.Errorf("NotAfter = %v, want %v", facts.NotAfter, cert.NotAfter)
	}
}
