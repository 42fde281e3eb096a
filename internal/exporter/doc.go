// Package exporter renders analysis results as CSV files and Excel
// workbooks for the batch reporting command.
package exporter
