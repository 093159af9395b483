package crawler

import (
	"context"
	"fmt"

	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/errors"
	"github.com/lawglot/lawglot-go/internal/termgraph"
)

// runRelations expands every stored legal term to its daily-term relations.
// Seeds come from the store in stable ID order; batches accumulate across
// FlushEvery seeds before committing, and the cursor records the index of the
// last seed whose relations were committed.
func (c *Crawler) runRelations(ctx context.Context) error {
	seeds, err := c.store.ListLegalTermIDs()
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return errors.Newf("no legal terms in store, run the lstrm strategy first").
			Component("crawler").
			Category(errors.CategoryState).
			Build()
	}

	start := 0
	if c.opts.Resume {
		cursor, err := c.store.GetCursor("relations")
		if err != nil {
			return err
		}
		if cursor != nil {
			start = cursor.SeedIndex + 1
			logger.Info("resuming relation crawl", "seed_index", start, "seeds", len(seeds))
		}
	}

	c.mu.Lock()
	c.progress.SeedTotal = len(seeds)
	c.mu.Unlock()

	pending := &datastore.NormalizedBatch{}
	windowStart := start

	flush := func(lastIdx int) error {
		meta := &datastore.BatchMeta{
			Key:      fmt.Sprintf("crawl:relations:seed:%d", windowStart),
			RunID:    c.runID,
			Strategy: "relations",
		}
		if err := c.commit("relations", pending, meta); err != nil {
			return err
		}
		if err := c.store.SaveCursor(&datastore.CrawlCursor{
			Strategy:  "relations",
			SeedIndex: lastIdx,
			SeedID:    seeds[lastIdx],
		}); err != nil {
			return err
		}
		pending = &datastore.NormalizedBatch{}
		windowStart = lastIdx + 1
		return nil
	}

	processed := 0
	for idx := start; idx < len(seeds); idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seedID := seeds[idx]
		c.mu.Lock()
		c.progress.SeedIndex = idx
		c.mu.Unlock()

		record, err := c.api.LegalToDaily(ctx, seedID)
		if err != nil {
			if abortErr := c.noteFailure("relations", err); abortErr != nil {
				// commit what accumulated before aborting so resume loses nothing
				if idx > windowStart {
					if flushErr := flush(idx - 1); flushErr != nil {
						logger.Error("flush before abort failed", "error", flushErr)
					}
				}
				return abortErr
			}
			idx-- // retry the same seed after a counted transient failure
			continue
		}
		c.noteSuccess()

		pending.Merge(termgraph.BuildRelationBatch(seedID, "", record.Items))
		processed++

		if processed%c.opts.FlushEvery == 0 {
			if err := flush(idx); err != nil {
				return err
			}
		}
		if c.opts.MaxTerms > 0 && processed >= c.opts.MaxTerms {
			logger.Info("seed limit reached", "seeds", processed)
			return flush(idx)
		}
	}

	return flush(len(seeds) - 1)
}
