package sources

import (
	"context"
	"log/slog"

	"github.com/Yuri05/OSPSuite.Core/internal/dataimport"
)

// Loader reads data files and maps them to datasets with one configuration
type Loader struct {
	cfg    *ImportConfiguration
	logger *slog.Logger
}

// NewLoader creates a loader for a validated configuration
func NewLoader(cfg *ImportConfiguration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, logger: logger.With(slog.String("component", "loader"))}
}

// Load returns the datasets of every selected sheet of the file at path
func (l *Loader) Load(ctx context.Context, path string) ([]dataimport.DataSet, error) {
	sheets, err := ReadFile(path, l.cfg.DelimiterRune())
	if err != nil {
		return nil, err
	}

	var sets []dataimport.DataSet
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !l.cfg.wantsSheet(sheet.SheetName) {
			l.logger.Debug("sheet skipped", slog.String("file", path), slog.String("sheet", sheet.SheetName))
			continue
		}
		mapped, err := ToDataSets(sheet, l.cfg)
		if err != nil {
			return nil, err
		}
		sets = append(sets, mapped...)
	}

	l.logger.Info("file loaded",
		slog.String("file", path),
		slog.Int("sheets", len(sheets)),
		slog.Int("datasets", len(sets)))
	return sets, nil
}
