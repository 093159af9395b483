package datastore

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lawglot/lawglot-go/internal/errors"
)

// BatchMeta describes one committed batch for the metadata table.
type BatchMeta struct {
	Key         string    `json:"-"`        // meta record key, e.g. "crawl:lstrm:ga:3"
	RunID       string    `json:"run_id"`   // crawl run identifier
	Strategy    string    `json:"strategy"` // lstrm, relations or resolve
	Count       int       `json:"count"`    // rows in the batch
	CollectedAt time.Time `json:"collected_at"`
}

// ApplyBatch writes one normalized batch in a single transaction. Every row
// is upserted on its natural key, so re-applying the same batch leaves the
// store unchanged. The batch's MetaRecord is written inside the same
// transaction: either the rows and their count metadata are both visible or
// neither is.
func (ds *DataStore) ApplyBatch(batch *NormalizedBatch, meta *BatchMeta) (UpsertSummary, error) {
	var summary UpsertSummary
	if batch == nil || batch.Empty() {
		return summary, nil
	}

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		for i := range batch.LegalTerms {
			row := &batch.LegalTerms[i]
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			row.UpdatedAt = now
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "note", "terms_link", "articles_link", "updated_at"}),
			}).Create(row).Error
			if err != nil {
				return err
			}
			summary.LegalTerms++
		}

		for i := range batch.DailyTerms {
			row := &batch.DailyTerms[i]
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			row.UpdatedAt = now
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "source", "stem_relation_link", "updated_at"}),
			}).Create(row).Error
			if err != nil {
				return err
			}
			summary.DailyTerms++
		}

		for i := range batch.DictCodes {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "legal_term_id"}, {Name: "code"}},
				DoNothing: true,
			}).Create(&batch.DictCodes[i]).Error
			if err != nil {
				return err
			}
			summary.DictCodes++
		}

		for i := range batch.LawCodes {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "legal_term_id"}, {Name: "code"}},
				DoNothing: true,
			}).Create(&batch.LawCodes[i]).Error
			if err != nil {
				return err
			}
			summary.LawCodes++
		}

		for i := range batch.Relations {
			row := &batch.Relations[i]
			if row.CreatedAt.IsZero() {
				row.CreatedAt = now
			}
			// Identity columns never change on conflict; only the labels may
			// have been corrected upstream.
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "legal_term_id"}, {Name: "daily_term_id"}, {Name: "relation_code"}},
				DoUpdates: clause.AssignmentColumns([]string{"relation", "daily_term_name"}),
			}).Create(row).Error
			if err != nil {
				return err
			}
			summary.Relations++
		}

		if meta != nil {
			// Relation batches record their relation-row count so the
			// reconciliation check can compare against distinct rows.
			count := summary.Total()
			if meta.Strategy == "relations" {
				count = summary.Relations
			}
			if err := saveMetaTx(tx, meta, count); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return UpsertSummary{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "apply_batch").
			Context("batch_size", batch.Size()).
			Build()
	}
	return summary, nil
}

// saveMetaTx overwrites the batch's meta record inside the given transaction.
func saveMetaTx(tx *gorm.DB, meta *BatchMeta, count int) error {
	meta.Count = count
	if meta.CollectedAt.IsZero() {
		meta.CollectedAt = time.Now()
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	record := MetaRecord{
		Key:       meta.Key,
		Value:     string(payload),
		UpdatedAt: time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}
