package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bizpulse/internal/analytics"
	"bizpulse/internal/config"
	"bizpulse/internal/exporter"
	"bizpulse/internal/services"
	"bizpulse/internal/validation"
)

func main() {
	salesFiles := flag.String("sales", "", "comma-separated sales transaction files (.csv, .xlsx)")
	clientsFile := flag.String("clients", "", "client master file with region and rep columns (optional)")
	brandsFile := flag.String("brands", "", "brand dictionary file (optional)")
	outputDir := flag.String("out", "", "output directory for reports (defaults to data/reports)")
	unit := flag.String("unit", "month", "aggregation period: day, week, month, quarter, year")
	topN := flag.Int("top", 0, "number of entries in ranking reports (defaults to configured value)")
	window := flag.Int("window", 0, "rolling growth window in months (defaults to configured value)")
	months := flag.Int("forecast", 0, "months to forecast ahead (defaults to configured value)")
	workbook := flag.Bool("xlsx", false, "also write a combined Excel workbook")
	flag.Parse()

	if *salesFiles == "" {
		fmt.Fprintln(os.Stderr, "usage: report -sales <files> [-clients <file>] [-brands <file>] [-out <dir>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *topN <= 0 {
		*topN = cfg.Analysis.DefaultTopN
	}
	if *window <= 0 {
		*window = cfg.Analysis.DefaultWindowMonths
	}
	if *months <= 0 {
		*months = cfg.Analysis.ForecastMonths
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.ReportsDir
	}

	paths := strings.Split(*salesFiles, ",")
	validator := validation.NewFileValidator(slog.Default())
	if err := validator.ValidateDataFiles(paths); err != nil {
		slog.Error("Invalid sales input", "error", err)
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(*outputDir); err != nil {
		slog.Error("Invalid output directory", "error", err)
		os.Exit(1)
	}

	service := services.NewAnalysisService(cfg.Analysis, slog.Default())

	if *clientsFile != "" {
		if err := loadInto(*clientsFile, func(f *os.File) error {
			_, err := service.LoadClients(f, filepath.Base(*clientsFile))
			return err
		}); err != nil {
			slog.Error("Failed to load client master", "path", *clientsFile, "error", err)
			os.Exit(1)
		}
	}

	if *brandsFile != "" {
		var brandCount int
		if err := loadInto(*brandsFile, func(f *os.File) error {
			var err error
			brandCount, err = service.LoadBrandDictionary(f, filepath.Base(*brandsFile))
			return err
		}); err != nil {
			slog.Error("Failed to load brand dictionary", "path", *brandsFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded brand dictionary", "brands", brandCount)
	}

	summary, err := service.LoadTransactionFiles(paths...)
	if err != nil {
		slog.Error("Failed to load sales data", "error", err)
		os.Exit(1)
	}
	totalSales := 0.0
	if summary.TotalAmount != nil {
		totalSales = *summary.TotalAmount
	}
	slog.Info("Loaded sales data",
		"files", len(paths),
		"rows", summary.TotalRows,
		"total_sales", totalSales)

	tables := buildReports(service, *unit, *topN, *window, *months)
	if len(tables) == 0 {
		slog.Error("No reports could be generated")
		os.Exit(1)
	}

	timestamp := time.Now().Format("20060102")
	writer := exporter.NewCSVWriter(*outputDir, slog.Default())
	for _, table := range tables {
		name := fmt.Sprintf("%s_%s.csv", table.Name, timestamp)
		if err := writer.WriteCSV(name, exporter.WriteOptions{
			Headers:   table.Headers,
			Records:   table.Records,
			BOMPrefix: true,
		}); err != nil {
			slog.Error("Failed to write report", "report", table.Name, "error", err)
			os.Exit(1)
		}
		slog.Info("Report written", "path", filepath.Join(*outputDir, name))
	}

	if *workbook {
		wb := exporter.NewWorkbookWriter()
		defer wb.Close()
		for _, table := range tables {
			if err := wb.AddSheet(table); err != nil {
				slog.Error("Failed to add workbook sheet", "sheet", table.Name, "error", err)
				os.Exit(1)
			}
		}
		path := filepath.Join(*outputDir, fmt.Sprintf("sales_report_%s.xlsx", timestamp))
		if err := wb.Save(path); err != nil {
			slog.Error("Failed to save workbook", "error", err)
			os.Exit(1)
		}
		slog.Info("Workbook written", "path", path)
	}

	printSummary(totalSales, summary.TotalRows, service, *topN)
}

func loadInto(path string, load func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return load(f)
}

// buildReports renders every report the loaded data supports. Reports
// that need more data than is available are skipped with a warning.
func buildReports(service *services.AnalysisService, unit string, topN, window, months int) []exporter.ReportTable {
	var tables []exporter.ReportTable

	if buckets, err := service.PeriodAnalysis(unit); err == nil {
		tables = append(tables, exporter.PeriodReport(buckets))
	} else {
		slog.Warn("Skipping period report", "error", err)
	}

	if buckets, err := service.ClientAnalysis(topN); err == nil {
		tables = append(tables, exporter.EntityReport("clients", buckets))
	} else {
		slog.Warn("Skipping client report", "error", err)
	}

	if buckets, err := service.ProductAnalysis(topN); err == nil {
		tables = append(tables, exporter.ProductReport("products", buckets))
	} else {
		slog.Warn("Skipping product report", "error", err)
	}

	if service.HasDictionary() {
		if buckets, err := service.BrandAnalysis(topN); err == nil {
			tables = append(tables, exporter.EntityReport("brands", buckets))
		} else {
			slog.Warn("Skipping brand report", "error", err)
		}
	}

	if points, err := service.GrowthAnalysis(unit); err == nil {
		tables = append(tables, exporter.GrowthReport(points))
	} else {
		slog.Warn("Skipping growth report", "error", err)
	}

	if entries, err := service.RollingGrowthAnalysis("client", window, topN); err == nil {
		tables = append(tables, exporter.RollingGrowthReport(entries))
	} else {
		slog.Warn("Skipping rolling growth report", "error", err)
	}

	if forecast, err := service.ForecastAnalysis(months); err == nil {
		tables = append(tables, exporter.ForecastReport(forecast))
	} else {
		slog.Warn("Skipping forecast report", "error", err)
	}

	return tables
}

func printSummary(totalSales float64, totalRows int, service *services.AnalysisService, topN int) {
	fmt.Printf("\n=== SALES SUMMARY ===\n")
	fmt.Printf("Rows:        %d\n", totalRows)
	fmt.Printf("Total sales: %.0f\n", totalSales)

	buckets, err := service.ClientAnalysis(topN)
	if err != nil {
		return
	}
	if len(buckets) > 10 {
		buckets = buckets[:10]
	}

	fmt.Println("\n=== TOP CLIENTS ===")
	fmt.Println("Client | Total Sales | Share")
	fmt.Println("-------|-------------|------")
	printEntityRows(buckets)
}

func printEntityRows(buckets []analytics.EntityBucket) {
	for _, b := range buckets {
		fmt.Printf("%-20s | %12.0f | %5.1f%%\n", b.Name, b.TotalSales, b.SharePercent)
	}
}
