// Package dataset provides the tabular data model and preparation pipeline
// for uploaded sales ledgers.
//
// # Architecture
//
// The package is organized around a small row-oriented Table type:
//
//  1. Loader: reads Excel workbooks (excelize) and CSV exports into Tables
//  2. Columns: ordered candidate lists resolving semantic fields
//     (date, amount, client, product) from heterogeneous headers
//  3. Prepare: merge, normalization (type coercion, seller-name rename,
//     empty-row removal) and the client-metadata left join
//  4. Summary: scalar overview plus the bounded textual summary consumed
//     by the Q&A delegate
//
// # Usage
//
// Typical preparation of a batch of uploads:
//
//	merged, err := dataset.LoadFiles(logger, paths...)
//	if err != nil {
//	    return err
//	}
//	prepared := dataset.Normalize(merged, logger)
//	prepared = dataset.JoinClientInfo(prepared, clients, logger)
//
// Normalize is idempotent; re-running preparation over an already-prepared
// table leaves it unchanged.
package dataset
