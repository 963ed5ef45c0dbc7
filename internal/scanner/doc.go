// Package scanner implements the sitegrade reconnaissance engine.
//
// Architecture overview:
//
//   - NormalizeTarget reduces user input to an immutable Target (origin,
//     hostname, scheme) with no network access.
//   - Probes (checkSSL, checkHeaders, fetchPage, checkExposedFiles) are
//     timeout-bounded network operations that always resolve to a
//     CategoryResult; connection errors and timeouts degrade the category
//     instead of aborting the scan.
//   - Analyzers (analyzeCMS, analyzeMalware, analyzePerformance) are pure
//     functions over the fetched page body, so they are testable without a
//     network and safe to fan out over the shared read-only Page.
//   - Scanner orchestrates the waves: SSL, headers, page fetch, and
//     exposed-path probes run concurrently; the body-dependent analyzers
//     start once the page fetch resolves. Exposed-path probing uses a
//     bounded worker pool gated by a rate limiter so one scan never hammers
//     the target origin.
//   - Aggregate, GradeFor, and Summarize deterministically reduce category
//     results to the weighted 0-100 score, A-F grade, and finding tallies.
//
// All signature, header, path, and weight tables are immutable package data
// loaded at init; scorers never mutate them at runtime.
package scanner
