package datastore

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lawglot/lawglot-go/internal/errors"
)

// GetMeta fetches one metadata record by key.
func (ds *DataStore) GetMeta(key string) (*MetaRecord, error) {
	var record MetaRecord
	if err := ds.DB.First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("meta record %q not found", key).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, dbError(err, "get_meta")
	}
	return &record, nil
}

// ReconcileReport compares the row counts recorded per batch with the actual
// distinct rows in the store, to detect silent under-collection.
type ReconcileReport struct {
	Strategy    string
	Batches     int
	MetaCount   int // sum of per-batch counts
	RowCount    int // distinct rows the strategy is responsible for
	Consistent  bool
	GeneratedAt time.Time
}

// Reconcile sums the per-batch meta counts for one strategy and compares
// them with the live row count of the tables that strategy fills: relation
// rows for "relations", term and code-bridge rows for "lstrm".
func (ds *DataStore) Reconcile(strategy string) (ReconcileReport, error) {
	report := ReconcileReport{Strategy: strategy, GeneratedAt: time.Now()}

	var records []MetaRecord
	prefix := "crawl:" + strategy + ":"
	if err := ds.DB.Where("key LIKE ?", prefix+"%").Find(&records).Error; err != nil {
		return report, dbError(err, "reconcile_meta_scan")
	}

	for i := range records {
		var meta BatchMeta
		if err := json.Unmarshal([]byte(records[i].Value), &meta); err != nil {
			// Count the batch but flag the report; a corrupt meta value is
			// itself a collection anomaly.
			report.Batches++
			continue
		}
		if !strings.EqualFold(meta.Strategy, strategy) {
			continue
		}
		report.Batches++
		report.MetaCount += meta.Count
	}

	models := []any{&TermRelation{}}
	if strategy == "lstrm" {
		models = []any{&LegalTerm{}, &LegalTermDictCode{}, &LegalTermLawCode{}}
	}
	for _, model := range models {
		var rows int64
		if err := ds.DB.Model(model).Count(&rows).Error; err != nil {
			return report, dbError(err, "reconcile_row_count")
		}
		report.RowCount += int(rows)
	}
	report.Consistent = report.MetaCount == report.RowCount
	return report, nil
}

// GetCursor fetches the resume marker for one strategy; a missing cursor is
// returned as nil without error so a fresh crawl starts from the beginning.
func (ds *DataStore) GetCursor(strategy string) (*CrawlCursor, error) {
	var cursor CrawlCursor
	if err := ds.DB.First(&cursor, "strategy = ?", strategy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_cursor")
	}
	return &cursor, nil
}

// SaveCursor overwrites the resume marker for the cursor's strategy.
func (ds *DataStore) SaveCursor(cursor *CrawlCursor) error {
	cursor.UpdatedAt = time.Now()
	err := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "strategy"}},
		DoUpdates: clause.AssignmentColumns([]string{"gana", "page", "seed_index", "seed_id", "batch_checksum", "updated_at"}),
	}).Create(cursor).Error
	if err != nil {
		return dbError(err, "save_cursor")
	}
	return nil
}
