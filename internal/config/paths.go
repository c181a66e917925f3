package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories
type Paths struct {
	BaseDir      string
	DataDir      string
	OutputDir    string
	LogsDir      string
	LogFile      string
	DatabaseFile string
}

// ResolvePaths turns the configured paths into absolute ones
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir:   base,
		DataDir:   resolve(base, c.Paths.DataDir),
		OutputDir: resolve(base, c.Paths.OutputDir),
		LogsDir:   resolve(base, c.Paths.LogsDir),
	}
	p.LogFile = resolve(p.LogsDir, c.Logging.FilePath)
	p.DatabaseFile = resolve(p.DataDir, c.Storage.DatabaseFile)
	return p, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPath returns filename inside the output directory unless it is absolute
func (p *Paths) OutputPath(filename string) string {
	return resolve(p.OutputDir, filename)
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
