// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the crawl pipeline (write path) and the resolution service
// (read path) need.
type Interface interface {
	Open() error
	Close() error

	// write path
	ApplyBatch(batch *NormalizedBatch, meta *BatchMeta) (UpsertSummary, error)
	GetCursor(strategy string) (*CrawlCursor, error)
	SaveCursor(cursor *CrawlCursor) error

	// metadata
	GetMeta(key string) (*MetaRecord, error)
	Reconcile(strategy string) (ReconcileReport, error)

	// read path
	FindDailyTermsByName(name string, limit int) ([]DailyTerm, error)
	FindLegalTermsByName(name string, limit int) ([]LegalTerm, error)
	RelationsForDailyTerm(dailyTermID string, limit int) ([]TermRelation, error)
	RelationsForLegalTerm(legalTermID string, limit int) ([]TermRelation, error)
	GetLegalTerm(id string) (*LegalTerm, error)
	ListLegalTermIDs() ([]string, error)
	DictCodesForLegalTerm(legalTermID string) ([]string, error)
	LawCodesForLegalTerm(legalTermID string) ([]string, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store for the enabled backend in settings.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.Default(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// performAutoMigration creates or updates the schema for all tables.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(
		&LegalTerm{}, &DailyTerm{},
		&LegalTermDictCode{}, &LegalTermLawCode{},
		&TermRelation{}, &CrawlCursor{}, &MetaRecord{},
	); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Build()
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}
	return nil
}

// GetLegalTerm fetches one legal term by upstream ID.
func (ds *DataStore) GetLegalTerm(id string) (*LegalTerm, error) {
	var term LegalTerm
	if err := ds.DB.First(&term, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf("legal term %q not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return nil, dbError(err, "get_legal_term")
	}
	return &term, nil
}

// FindDailyTermsByName returns daily terms whose name contains the given
// text, bounded by limit. Exact matches sort first so upstream relevance is
// approximated without any scoring machinery.
func (ds *DataStore) FindDailyTermsByName(name string, limit int) ([]DailyTerm, error) {
	var terms []DailyTerm
	err := ds.DB.
		Where("name LIKE ?", "%"+name+"%").
		Order(exactMatchFirst(name)).
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		return nil, dbError(err, "find_daily_terms")
	}
	return terms, nil
}

// FindLegalTermsByName returns legal terms whose name contains the given text.
func (ds *DataStore) FindLegalTermsByName(name string, limit int) ([]LegalTerm, error) {
	var terms []LegalTerm
	err := ds.DB.
		Where("name LIKE ?", "%"+name+"%").
		Order(exactMatchFirst(name)).
		Limit(limit).
		Find(&terms).Error
	if err != nil {
		return nil, dbError(err, "find_legal_terms")
	}
	return terms, nil
}

// RelationsForDailyTerm returns the term relations of one daily term.
func (ds *DataStore) RelationsForDailyTerm(dailyTermID string, limit int) ([]TermRelation, error) {
	var relations []TermRelation
	err := ds.DB.
		Where("daily_term_id = ?", dailyTermID).
		Order("legal_term_id, relation_code").
		Limit(limit).
		Find(&relations).Error
	if err != nil {
		return nil, dbError(err, "relations_for_daily_term")
	}
	return relations, nil
}

// RelationsForLegalTerm returns the term relations of one legal term.
func (ds *DataStore) RelationsForLegalTerm(legalTermID string, limit int) ([]TermRelation, error) {
	var relations []TermRelation
	err := ds.DB.
		Where("legal_term_id = ?", legalTermID).
		Order("daily_term_id, relation_code").
		Limit(limit).
		Find(&relations).Error
	if err != nil {
		return nil, dbError(err, "relations_for_legal_term")
	}
	return relations, nil
}

// ListLegalTermIDs returns all legal term IDs in insertion-stable order.
// The relations crawl strategy uses this as its seed list.
func (ds *DataStore) ListLegalTermIDs() ([]string, error) {
	var ids []string
	if err := ds.DB.Model(&LegalTerm{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, dbError(err, "list_legal_term_ids")
	}
	return ids, nil
}

// DictCodesForLegalTerm returns the dict-kind codes of one legal term.
func (ds *DataStore) DictCodesForLegalTerm(legalTermID string) ([]string, error) {
	var codes []string
	err := ds.DB.Model(&LegalTermDictCode{}).
		Where("legal_term_id = ?", legalTermID).
		Order("code").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, dbError(err, "dict_codes_for_legal_term")
	}
	return codes, nil
}

// LawCodesForLegalTerm returns the law-kind codes of one legal term.
func (ds *DataStore) LawCodesForLegalTerm(legalTermID string) ([]string, error) {
	var codes []string
	err := ds.DB.Model(&LegalTermLawCode{}).
		Where("legal_term_id = ?", legalTermID).
		Order("code").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, dbError(err, "law_codes_for_legal_term")
	}
	return codes, nil
}

func dbError(err error, operation string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

// exactMatchFirst orders LIKE results so exact name matches come first,
// approximating upstream relevance without any scoring machinery.
func exactMatchFirst(name string) clause.OrderBy {
	return clause.OrderBy{
		Expression: clause.Expr{
			SQL:                "CASE WHEN name = ? THEN 0 ELSE 1 END, id",
			Vars:               []any{name},
			WithoutParentheses: true,
		},
	}
}
