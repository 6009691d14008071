package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/classify"
	"github.com/sells-group/turkology-cli/internal/config"
	"github.com/sells-group/turkology-cli/internal/corrections"
	"github.com/sells-group/turkology-cli/internal/keywords"
	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/pipeline"
	"github.com/sells-group/turkology-cli/internal/resilience"
	"github.com/sells-group/turkology-cli/internal/store"
)

// initStore opens the configured store. Callers must Close it.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		retry := resilience.DefaultRetryConfig()
		retry.OnRetry = resilience.RetryLogger("postgres connect")
		pg, err := resilience.Do(ctx, retry, func(ctx context.Context) (*store.PostgresStore, error) {
			return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
				MaxConns: cfg.Store.MaxConns,
				MinConns: cfg.Store.MinConns,
			})
		})
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// loadMapping reads the keyword mapping named in the config. Without one,
// keyword headings are only recognised by their code.
func loadMapping(ctx context.Context) (model.KeywordMapping, error) {
	if cfg.Keywords.Path == "" {
		zap.L().Warn("no keyword mapping configured (keywords.path)")
		return model.KeywordMapping{}, nil
	}
	return keywords.Load(ctx, cfg.Keywords.Path)
}

// loadCorrections returns the configured paragraph corrections.
func loadCorrections(c config.CorrectionsConfig) ([]corrections.Correction, error) {
	switch {
	case c.Disabled:
		return nil, nil
	case c.Path != "":
		return corrections.Load(c.Path)
	default:
		return corrections.Default(), nil
	}
}

// knownGaps converts the configured gaps, or returns nil to keep the
// built-in ones.
func knownGaps(gaps map[string][]config.GapRange) map[string][]classify.GapRange {
	if len(gaps) == 0 {
		return nil
	}
	out := make(map[string][]classify.GapRange, len(gaps))
	for volume, rs := range gaps {
		for _, r := range rs {
			out[volume] = append(out[volume], classify.GapRange{Start: r.Start, End: r.End})
		}
	}
	return out
}

// newPipeline builds a Pipeline from the config.
func newPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	mapping, err := loadMapping(ctx)
	if err != nil {
		return nil, err
	}
	cs, err := loadCorrections(cfg.Corrections)
	if err != nil {
		return nil, err
	}
	return pipeline.New(mapping, pipeline.Options{
		Concurrency:        cfg.Pipeline.Concurrency,
		FindAuthors:        cfg.Pipeline.FindAuthors,
		ResolveRepetitions: cfg.Pipeline.ResolveRepetitions,
		Corrections:        cs,
		TempDir:            cfg.Pipeline.TempDir,
	},
		classify.WithKnownGaps(knownGaps(cfg.Pipeline.KnownGaps)),
		classify.WithMaxCitationGap(cfg.Pipeline.MaxCitationGap),
	), nil
}

// outputWriter returns stdout for "" or "-", otherwise a created file.
func outputWriter(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create %s", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeJSON writes v indented to path (stdout for "" or "-").
func writeJSON(path string, v any) error {
	w, err := outputWriter(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = w.Close()
		return eris.Wrap(err, "encode output")
	}
	return w.Close()
}
