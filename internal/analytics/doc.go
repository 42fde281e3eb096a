// Package analytics implements the grouped sales aggregations, growth
// comparisons and the linear-trend forecast.
//
// # Core Components
//
//   - aggregate.go: by-period, by-client, by-product and by-brand reports
//     with share-of-total and cumulative share
//   - growth.go: period-over-period and year-over-year growth, plus
//     rolling-window growth per client or brand
//   - forecast.go: ordinary-least-squares trend fit over monthly totals
//     with trailing means
//
// Every function is pure: it reads an immutable Table snapshot and returns
// a derived report, so repeated calls with different parameters are safe
// against the same session dataset. Percentage columns are rounded to two
// decimals; shares always divide by the grand total of the full filtered
// set, not the displayed top-N subset.
package analytics
