// model.go this code defines the data model for the application
package datastore

import "time"

// LegalTerm is one statutory term as listed by the upstream term registry.
// IDs are upstream-assigned and stable across re-crawls; rows are never
// deleted, only updated.
type LegalTerm struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"index:idx_legal_terms_name"`
	Note         string
	TermsLink    string // link to term-to-term relations
	ArticlesLink string // link to term-to-article relations
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DailyTerm is one colloquial term with links into the legal vocabulary.
type DailyTerm struct {
	ID               string `gorm:"primaryKey;size:64"`
	Name             string `gorm:"index:idx_daily_terms_name"`
	Source           string
	StemRelationLink string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LegalTermDictCode is the bridge row for the dict-kind classification codes
// (사전구분코드). Upstream joins multiple codes into one comma-separated
// string; each code gets its own row so the set stays queryable.
type LegalTermDictCode struct {
	LegalTermID string `gorm:"primaryKey;size:64"`
	Code        string `gorm:"primaryKey;size:16"`
}

// LegalTermLawCode is the bridge row for the law-kind classification codes
// (법령종류코드).
type LegalTermLawCode struct {
	LegalTermID string `gorm:"primaryKey;size:64"`
	Code        string `gorm:"primaryKey;size:16"`
}

// TermRelation links a legal term and a daily term under one relation code.
// The relation code is part of the key: the same pair may be related under
// several distinct semantic relations and each one is its own row.
type TermRelation struct {
	LegalTermID   string `gorm:"primaryKey;size:64"`
	DailyTermID   string `gorm:"primaryKey;size:64;index:idx_term_relations_daily"`
	RelationCode  string `gorm:"primaryKey;size:16"`
	Relation      string
	DailyTermName string
	CreatedAt     time.Time
}

// CrawlCursor is the persisted resume marker, one row per strategy.
type CrawlCursor struct {
	Strategy      string `gorm:"primaryKey;size:32"`
	Gana          string `gorm:"size:8"`
	Page          int
	SeedIndex     int
	SeedID        string `gorm:"size:64"`
	BatchChecksum string `gorm:"size:64"`
	UpdatedAt     time.Time
}

// MetaRecord stores JSON-valued run metadata keyed by batch identifier.
// One logical record per key, overwritten on re-collection.
type MetaRecord struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// NormalizedBatch is the builder output applied to the store in one
// transaction.
type NormalizedBatch struct {
	LegalTerms []LegalTerm
	DailyTerms []DailyTerm
	DictCodes  []LegalTermDictCode
	LawCodes   []LegalTermLawCode
	Relations  []TermRelation
}

// Empty reports whether the batch contains no rows at all.
func (b *NormalizedBatch) Empty() bool {
	return len(b.LegalTerms) == 0 && len(b.DailyTerms) == 0 &&
		len(b.DictCodes) == 0 && len(b.LawCodes) == 0 && len(b.Relations) == 0
}

// Size returns the total number of rows in the batch.
func (b *NormalizedBatch) Size() int {
	return len(b.LegalTerms) + len(b.DailyTerms) + len(b.DictCodes) + len(b.LawCodes) + len(b.Relations)
}

// Merge appends all rows of other into b.
func (b *NormalizedBatch) Merge(other *NormalizedBatch) {
	if other == nil {
		return
	}
	b.LegalTerms = append(b.LegalTerms, other.LegalTerms...)
	b.DailyTerms = append(b.DailyTerms, other.DailyTerms...)
	b.DictCodes = append(b.DictCodes, other.DictCodes...)
	b.LawCodes = append(b.LawCodes, other.LawCodes...)
	b.Relations = append(b.Relations, other.Relations...)
}

// UpsertSummary reports how many rows each table received in one ApplyBatch.
type UpsertSummary struct {
	LegalTerms int
	DailyTerms int
	DictCodes  int
	LawCodes   int
	Relations  int
}

// Total returns the number of rows written across all tables.
func (s UpsertSummary) Total() int {
	return s.LegalTerms + s.DailyTerms + s.DictCodes + s.LawCodes + s.Relations
}
