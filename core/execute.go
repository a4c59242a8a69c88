package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/statlake/covidload/internal/archive"
	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/internal/outwriter"
	"github.com/statlake/covidload/internal/source"
	"github.com/statlake/covidload/internal/warehouse"
	"github.com/statlake/covidload/schema"
)

// ExecuteRun performs one end-to-end run from the configured source into the
// configured warehouse, with optional snapshot archival around the core. It
// serves as the main entry point for the 'run' command. The run summary is
// printed even when the run fails.
func ExecuteRun(ctx context.Context, cfg *contract.Config) error {
	fmt.Printf("🔎 Loading snapshot as of %s...\n", cfg.AsOf.Format(schema.DateFormat))

	data, err := fetchSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	archiver := openArchiver(ctx, cfg)
	if archiver != nil {
		defer func() { _ = archiver.Close() }()
		putSnapshot(ctx, cfg, archiver, archive.RawPrefix, data)
	}

	var store contract.WarehouseStore
	if !cfg.DryRun {
		openCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		store, err = warehouse.NewStore(openCtx, cfg.WarehouseBackend, cfg.WarehouseDBConnect)
		cancel()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	summary, runErr := RunPipeline(runCtx, bytes.NewReader(data), store, RunOptions{
		AsOf:            cfg.AsOf,
		RejectThreshold: cfg.RejectThreshold,
		LockTTL:         cfg.LockTTL,
		DryRun:          cfg.DryRun,
	})

	if err := outwriter.PrintRunSummary(summary, cfg); err != nil {
		contract.LogWarning("could not print run summary", err)
	}
	if runErr != nil {
		return runErr
	}

	if archiver != nil && !cfg.DryRun {
		archiveProcessed(ctx, cfg, archiver, store)
	}
	return nil
}

// fetchSnapshot opens the configured source and buffers the whole snapshot,
// so the same bytes feed both the raw archive and the parser.
func fetchSnapshot(ctx context.Context, cfg *contract.Config) ([]byte, error) {
	var client contract.SourceClient
	if cfg.SourceFile != "" {
		client = source.NewFileClient(cfg.SourceFile)
	} else {
		client = source.NewHTTPClient(cfg.SourceURL, cfg.Timeout)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	stream, err := client.Fetch(fetchCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot stream: %v", schema.ErrSourceUnavailable, err)
	}
	return data, nil
}

// openArchiver builds the configured snapshot archive, or nil when archival
// is disabled. An archive that cannot be opened downgrades to a warning:
// storage is a collaborator, not part of the core run.
func openArchiver(ctx context.Context, cfg *contract.Config) contract.ObjectStore {
	switch cfg.ArchiveBackend {
	case schema.LocalArchive:
		archiver, err := archive.NewLocalStore(cfg.ArchiveDir)
		if err != nil {
			contract.LogWarning("snapshot archive disabled", err)
			return nil
		}
		return archiver
	case schema.GCSArchive:
		openCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		archiver, err := archive.NewGCSStore(openCtx, cfg.ArchiveBucket, cfg.ArchiveKeyFile)
		if err != nil {
			contract.LogWarning("snapshot archive disabled", err)
			return nil
		}
		return archiver
	default:
		return nil
	}
}

// putSnapshot archives one snapshot copy, warning on failure.
func putSnapshot(ctx context.Context, cfg *contract.Config, archiver contract.ObjectStore, prefix string, data []byte) {
	if cfg.DryRun {
		return
	}
	putCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	key := archive.SnapshotKey(prefix, cfg.AsOf)
	if err := archiver.Put(putCtx, key, data); err != nil {
		contract.LogWarning(fmt.Sprintf("could not archive %s snapshot", prefix), err)
		return
	}
	fmt.Printf("💾 Archived %s snapshot as %s\n", prefix, key)
}

// archiveProcessed stages the full processed dataset, mirroring the raw
// snapshot: the upstream feed is cumulative over all history, so the
// processed copy is too.
func archiveProcessed(ctx context.Context, cfg *contract.Config, archiver contract.ObjectStore, store contract.WarehouseStore) {
	readCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	metrics, err := store.ReadMetrics(readCtx, "", time.Time{})
	if err != nil {
		contract.LogWarning("could not read back processed metrics for archive", err)
		return
	}
	data, err := outwriter.MetricsCSVBytes(metrics)
	if err != nil {
		contract.LogWarning("could not encode processed snapshot", err)
		return
	}
	putSnapshot(ctx, cfg, archiver, archive.ProcessedPrefix, data)
}
