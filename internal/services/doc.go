// Package services contains the application service layer.
//
// # Architecture
//
// The service layer sits between the HTTP transport and the domain
// packages (dataset, brand, analytics). It owns the in-memory analysis
// session and translates domain errors into API errors.
//
// Components:
//
//  1. AnalysisService - holds the uploaded transaction data, client
//     metadata and brand dictionary, rebuilds the prepared table on
//     every upload, and exposes the aggregation, growth and forecast
//     operations against a consistent snapshot.
//
//  2. QAService - answers natural-language questions about the loaded
//     dataset by prompting an external language model with a bounded
//     text rendering of the session. Gemini first, OpenAI as fallback.
//
//  3. HealthService - reports process health and session state.
//
// Usage:
//
//	svc := services.NewAnalysisService(cfg.Analysis, logger)
//	summary, err := svc.LoadTransactions(file, "sales.xlsx")
//	clients, err := svc.ClientAnalysis(20)
package services
