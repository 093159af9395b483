package crawler

import (
	"context"
	"fmt"

	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/termgraph"
)

// runListing sweeps the legal-term listing endpoint across all gana groups,
// committing one batch per page. The cursor records the last committed
// (gana, page) pair; a resumed run picks up at the page after it.
func (c *Crawler) runListing(ctx context.Context) error {
	startGana, startPage := 0, 1
	if c.opts.Resume {
		cursor, err := c.store.GetCursor("lstrm")
		if err != nil {
			return err
		}
		if cursor != nil {
			for i, code := range ganaCodes {
				if code == cursor.Gana {
					startGana = i
					break
				}
			}
			startPage = cursor.Page + 1
			logger.Info("resuming listing crawl", "gana", cursor.Gana, "page", startPage)
		}
	}

	terms := 0
	for ganaIdx := startGana; ganaIdx < len(ganaCodes); ganaIdx++ {
		gana := ganaCodes[ganaIdx]
		page := 1
		if ganaIdx == startGana {
			page = startPage
		}

		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.mu.Lock()
			c.progress.Gana = gana
			c.progress.Page = page
			c.mu.Unlock()

			record, err := c.api.ListLegalTerms(ctx, gana, page, c.opts.Display)
			if err != nil {
				if abortErr := c.noteFailure("lstrm", err); abortErr != nil {
					return abortErr
				}
				continue // retry the same page after a counted transient failure
			}
			c.noteSuccess()

			if len(record.Items) == 0 {
				break
			}

			batch := termgraph.BuildTermBatch(record.Items)
			meta := &datastore.BatchMeta{
				Key:      fmt.Sprintf("crawl:lstrm:%s:%d", gana, page),
				RunID:    c.runID,
				Strategy: "lstrm",
			}
			if err := c.commit("lstrm", batch, meta); err != nil {
				return err
			}
			if err := c.store.SaveCursor(&datastore.CrawlCursor{
				Strategy: "lstrm",
				Gana:     gana,
				Page:     page,
			}); err != nil {
				return err
			}

			terms += len(batch.LegalTerms)
			if c.opts.MaxTerms > 0 && terms >= c.opts.MaxTerms {
				logger.Info("term limit reached", "terms", terms)
				return nil
			}

			if record.TotalCount > 0 && page*c.opts.Display >= record.TotalCount {
				break
			}
			page++
		}
	}
	return nil
}
