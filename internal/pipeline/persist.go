package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/turkology-cli/internal/model"
	"github.com/sells-group/turkology-cli/internal/store"
)

// Persist writes a run result to st under runID: the classified paragraphs
// of each volume, the citations, the rejected records and the run stats.
func Persist(ctx context.Context, st store.Store, runID string, result *Result) error {
	for _, v := range result.Volumes {
		if _, err := st.SaveParagraphs(ctx, runID, v.Paragraphs); err != nil {
			return eris.Wrapf(err, "pipeline: save paragraphs of volume %s", v.Volume)
		}
	}

	n, err := st.SaveCitations(ctx, runID, result.Citations)
	if err != nil {
		return eris.Wrap(err, "pipeline: save citations")
	}
	if _, err := st.SaveRejected(ctx, runID, result.Rejected); err != nil {
		return eris.Wrap(err, "pipeline: save rejected")
	}

	stats := result.Stats
	if err := st.UpdateRunStats(ctx, runID, &stats); err != nil {
		return eris.Wrap(err, "pipeline: update run stats")
	}

	zap.L().Info("pipeline: run persisted",
		zap.String("run_id", runID),
		zap.Int64("citations", n),
		zap.Int("rejected", len(result.Rejected)),
	)
	return nil
}

// RunAndPersist creates a run record, parses inputs and persists the
// result. The run is marked failed when parsing or persisting fails.
func (p *Pipeline) RunAndPersist(ctx context.Context, st store.Store, inputs []string) (*model.Run, *Result, error) {
	run, err := st.CreateRun(ctx, inputs)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: create run")
	}

	fail := func(cause error) (*model.Run, *Result, error) {
		if statusErr := st.UpdateRunStatus(context.WithoutCancel(ctx), run.ID, model.RunStatusFailed); statusErr != nil {
			zap.L().Warn("pipeline: failed to update status", zap.String("run_id", run.ID), zap.Error(statusErr))
		}
		run.Status = model.RunStatusFailed
		return run, nil, cause
	}

	result, err := p.Run(ctx, inputs)
	if err != nil {
		return fail(err)
	}
	if err := Persist(ctx, st, run.ID, result); err != nil {
		return fail(err)
	}

	run.Status = model.RunStatusComplete
	run.Stats = &result.Stats
	return run, result, nil
}
