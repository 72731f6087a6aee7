package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"claimdesk/internal/config"
	"claimdesk/internal/engine"
	"claimdesk/internal/ingest"
	"claimdesk/internal/storage"
)

// Service watches a drop folder for claims extracts and turns each new
// file into an exported work queue for the configured client.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// Run blocks until the context is cancelled. New files wake the loop
// via fsnotify; the interval rescan picks up anything dropped while an
// event was missed.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.WatcherConfigID == 0 {
		return fmt.Errorf("WATCHER_CONFIG_ID is required")
	}
	for _, dir := range []string{s.cfg.InputDir, s.processedDir(), s.failedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(s.cfg.InputDir); err != nil {
		return err
	}

	interval := time.Duration(s.cfg.WatcherIntervalSec) * time.Second

	for {
		if err := s.runCycle(); err != nil {
			fmt.Printf("watcher cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Give the producer a moment to finish writing.
			time.Sleep(500 * time.Millisecond)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("watcher notify error: %v\n", err)
		case <-time.After(interval):
		}
	}
}

func (s *Service) runCycle() error {
	entries, err := os.ReadDir(s.cfg.InputDir)
	if err != nil {
		return err
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isExtract(entry.Name()) {
			continue
		}

		path := filepath.Join(s.cfg.InputDir, entry.Name())
		if err := s.processFile(path); err != nil {
			fmt.Printf("watcher failed file=%s err=%v\n", entry.Name(), err)
			_ = os.Rename(path, filepath.Join(s.failedDir(), entry.Name()))
			continue
		}
		_ = os.Rename(path, filepath.Join(s.processedDir(), entry.Name()))
		processed++
	}

	if processed > 0 {
		_ = s.db.SetMetadata("watcher.last_run", time.Now().UTC().Format(time.RFC3339))
		fmt.Printf("watcher cycle done configId=%d processed=%d\n", s.cfg.WatcherConfigID, processed)
	}
	return nil
}

// processFile loads the configuration and rule snapshot fresh per
// file; nothing is carried between files.
func (s *Service) processFile(path string) error {
	clientConfig, err := s.db.MustConfig(s.cfg.WatcherConfigID)
	if err != nil {
		return err
	}
	rules, err := s.db.GetRuleSet(clientConfig.ID)
	if err != nil {
		return err
	}

	table, err := ingest.DecodeFile(path)
	if err != nil {
		return err
	}

	analysis := engine.Analyze(table.Rows, clientConfig.ColumnMappings, rules)

	if !s.cfg.WatcherAutoExport {
		fmt.Printf("analyzed file=%s claims=%d\n", filepath.Base(path), analysis.Metrics.TotalClaims)
		return nil
	}

	outName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_queue.xlsx"
	outputPath := filepath.Join(s.cfg.OutputDir, "watcher", outName)
	if err := engine.ExportWorkQueueToXLSX(analysis, outputPath); err != nil {
		return err
	}

	fmt.Printf("exported file=%s claims=%d queue=%s\n", filepath.Base(path), analysis.Metrics.TotalClaims, outputPath)
	return nil
}

func (s *Service) processedDir() string {
	return filepath.Join(s.cfg.InputDir, "processed")
}

func (s *Service) failedDir() string {
	return filepath.Join(s.cfg.InputDir, "failed")
}

func isExtract(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls", ".csv", ".html", ".htm":
		return true
	default:
		return false
	}
}
