package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Data subdirectories used by the pipeline.
const (
	InputDir   = "excel_input"
	OutputDir  = "excel_output"
	ArchiveDir = "excel_archive"
	TokensDir  = "tokens"
)

// EnsureDirs creates the data directory tree.
func EnsureDirs(dataDir string) error {
	for _, d := range []string{InputDir, OutputDir, ArchiveDir, TokensDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dataDir, d), 0755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Discover lists the workbooks waiting in the input directory, sorted by
// name. Office lock files (~$) are ignored.
func Discover(dataDir string) ([]string, error) {
	inputDir := filepath.Join(dataDir, InputDir)
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xls":
			files = append(files, filepath.Join(inputDir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath builds the processed-file path: processed_<ts>_<original name>.
func OutputPath(dataDir, sourcePath string, now time.Time) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("processed_%s_%s%s", now.Format("20060102_150405"), stem, filepath.Ext(base))
	return filepath.Join(dataDir, OutputDir, name)
}

// Archive moves a successfully processed source file into the archive
// directory with a timestamp prefix.
func Archive(dataDir, sourcePath string, now time.Time) (string, error) {
	dir := filepath.Join(dataDir, ArchiveDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, now.Format("20060102_150405")+"_"+filepath.Base(sourcePath))
	if err := os.Rename(sourcePath, dest); err != nil {
		return "", fmt.Errorf("archive %s: %w", sourcePath, err)
	}
	return dest, nil
}
