package wiring

import (
	"errors"
	"io/fs"

	"go.uber.org/zap"

	"github.com/ivankudzin/trustengine/internal/config"
	"github.com/ivankudzin/trustengine/internal/services/analyzer"
)

// NewAnalyzer loads the pattern file when present and falls back to the built-in set.
// The returned watcher is nil unless analyzer.watch is set and the file exists.
func NewAnalyzer(cfg config.AnalyzerConfig, violations analyzer.ViolationReader, log *zap.Logger) (*analyzer.Analyzer, *analyzer.Watcher, error) {
	if cfg.PatternsPath == "" {
		return analyzer.New(nil, violations), nil, nil
	}
	set, err := analyzer.LoadPatternFile(cfg.PatternsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("pattern file not found, using built-in patterns", zap.String("path", cfg.PatternsPath))
			return analyzer.New(nil, violations), nil, nil
		}
		return nil, nil, err
	}
	toxic, spam, pii, sentiment := set.Counts()
	log.Info("analyzer patterns loaded",
		zap.String("path", cfg.PatternsPath),
		zap.Int("toxic", toxic),
		zap.Int("spam", spam),
		zap.Int("pii", pii),
		zap.Int("sentiment", sentiment),
	)

	a := analyzer.New(set, violations)
	if !cfg.Watch {
		return a, nil, nil
	}
	w, err := analyzer.NewWatcher(cfg.PatternsPath, a, log)
	if err != nil {
		return nil, nil, err
	}
	return a, w, nil
}
