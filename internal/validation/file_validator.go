package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator checks report inputs and outputs before any data is read.
// The batch command uses it to fail fast on bad paths instead of half-way
// through a multi-file load.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateDataFile checks that path exists, is readable, and carries a
// supported sales data extension (.csv or .xlsx; legacy OLE .xls is not
// readable by the Excel loader). Excel lock files ("~$" prefix) are
// rejected because Excel leaves them behind while a workbook is open.
func (v *FileValidator) ValidateDataFile(path string) error {
	if err := v.validateReadable(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".xlsx":
	default:
		v.logger.Error("Unsupported data file type",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("file %s is not a supported data file (extension: %s)", path, ext)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping Excel lock file", slog.String("file", path))
		return fmt.Errorf("file %s is an Excel lock file", path)
	}

	return nil
}

// ValidateDataFiles validates every path and returns the first failure.
func (v *FileValidator) ValidateDataFiles(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no data files given")
	}
	for _, path := range paths {
		if err := v.ValidateDataFile(path); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOutputDirectory ensures the output directory exists and is
// writable, creating it if necessary.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

func (v *FileValidator) validateReadable(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	return nil
}
