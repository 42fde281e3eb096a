// Package http contains the HTTP transport layer.
//
// # Architecture
//
// Handlers are thin adapters over the service layer. Each handler owns
// a chi sub-router mounted by the application under /api:
//
//	/api/upload    - dataset uploads (transactions, clients, brands)
//	/api/summary   - dataset overview and brand coverage
//	/api/analysis  - aggregation, growth and forecast reports
//	/api/qa        - natural-language questions about the dataset
//	/api/health    - process health and session state
//
// Handlers validate parameters, delegate to services, and render either
// a success envelope or the shared JSON error envelope.
package http
