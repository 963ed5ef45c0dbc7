package scanner

import "testing"

func TestAnalyzePerformance_OutdatedJQuery(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"hyphenated asset", `<script src="/js/jquery-1.12.4.min.js"></script>`, "1.12.4"},
		{"cdn path", `<script src="https://cdn.example.com/jquery/2.2.4/jquery.min.js"></script>`, "2.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzePerformance(Page{HTML: tt.html}, Target{Scheme: "https"})

			if result.Score == nil || *result.Score != 80 {
				t.Fatalf("expected score 80, got %v", result.Score)
			}
			if len(result.Findings) != 1 || result.Findings[0].ID != "perf-jquery-outdated" {
				t.Fatalf("expected perf-jquery-outdated, got %+v", result.Findings)
			}
			if got := result.Findings[0].Details["version"]; got != tt.want {
				t.Errorf("details.version = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyzePerformance_ModernJQueryIsClean(t *testing.T) {
	html := `<script src="/js/jquery-3.7.1.min.js"></script>`

	result := analyzePerformance(Page{HTML: html}, Target{Scheme: "https"})

	if result.Score == nil || *result.Score != 100 {
		t.Fatalf("expected score 100, got %v", result.Score)
	}
	if result.Findings[0].ID != "perf-clean" {
		t.Errorf("expected perf-clean, got %s", result.Findings[0].ID)
	}
}

func TestAnalyzePerformance_MixedContent(t *testing.T) {
	html := `<img src="http://cdn.example.com/banner.png">`

	result := analyzePerformance(Page{HTML: html}, Target{Scheme: "https"})

	if result.Score == nil || *result.Score != 85 {
		t.Fatalf("expected score 85, got %v", result.Score)
	}
	if result.Findings[0].ID != "perf-mixed-content" {
		t.Errorf("expected perf-mixed-content, got %s", result.Findings[0].ID)
	}
}

func TestAnalyzePerformance_MixedContentIgnoredOnHTTPTarget(t *testing.T) {
	html := `<img src="http://cdn.example.com/banner.png">`

	result := analyzePerformance(Page{HTML: html}, Target{Scheme: "http"})

	if result.Score == nil || *result.Score != 100 {
		t.Fatalf("plain-http targets cannot have mixed content, got score %v", result.Score)
	}
}

func TestAnalyzePerformance_BothIssues(t *testing.T) {
	html := `<script src="/js/jquery-1.8.0.js"></script><img src="http://cdn.example.com/x.png">`

	result := analyzePerformance(Page{HTML: html}, Target{Scheme: "https"})

	if result.Score == nil || *result.Score != 65 {
		t.Fatalf("expected score 65, got %v", result.Score)
	}
	if len(result.Findings) != 2 {
		t.Errorf("expected 2 findings, got %d", len(result.Findings))
	}
	if result.Status != StatusWarning {
		t.Errorf("expected warning, got %s", result.Status)
	}
}

func TestAnalyzePerformance_EmptyPage(t *testing.T) {
	result := analyzePerformance(Page{}, Target{Scheme: "https"})

	if result.Score == nil || *result.Score != 100 {
		t.Fatalf("expected score 100 for empty page, got %v", result.Score)
	}
}
