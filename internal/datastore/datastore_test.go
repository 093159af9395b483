package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot-go/internal/conf"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "lawglot_test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func sampleBatch() *NormalizedBatch {
	return &NormalizedBatch{
		LegalTerms: []LegalTerm{
			{ID: "L1", Name: "전세권", Note: "물권"},
			{ID: "L2", Name: "임대차"},
		},
		DailyTerms: []DailyTerm{
			{ID: "D1", Name: "전세금", Source: "국민 제안"},
		},
		DictCodes: []LegalTermDictCode{
			{LegalTermID: "L1", Code: "01"},
			{LegalTermID: "L1", Code: "03"},
		},
		LawCodes: []LegalTermLawCode{
			{LegalTermID: "L1", Code: "A0002"},
		},
		Relations: []TermRelation{
			{LegalTermID: "L1", DailyTermID: "D1", RelationCode: "1", Relation: "동의어"},
			{LegalTermID: "L2", DailyTermID: "D1", RelationCode: "2", Relation: "관련어"},
		},
	}
}

func TestApplyBatch_Idempotent(t *testing.T) {
	store := newTestStore(t)

	first, err := store.ApplyBatch(sampleBatch(), nil)
	require.NoError(t, err)
	assert.Equal(t, 8, first.Total())

	// applying the identical batch again must not create new rows
	_, err = store.ApplyBatch(sampleBatch(), nil)
	require.NoError(t, err)

	var legalCount, dailyCount, dictCount, relationCount int64
	store.DB.Model(&LegalTerm{}).Count(&legalCount)
	store.DB.Model(&DailyTerm{}).Count(&dailyCount)
	store.DB.Model(&LegalTermDictCode{}).Count(&dictCount)
	store.DB.Model(&TermRelation{}).Count(&relationCount)

	assert.EqualValues(t, 2, legalCount)
	assert.EqualValues(t, 1, dailyCount)
	assert.EqualValues(t, 2, dictCount)
	assert.EqualValues(t, 2, relationCount)
}

func TestApplyBatch_UpdatesMutableFieldsOnly(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ApplyBatch(sampleBatch(), nil)
	require.NoError(t, err)

	updated := &NormalizedBatch{
		LegalTerms: []LegalTerm{{ID: "L1", Name: "전세권(개정)", Note: "물권편"}},
	}
	_, err = store.ApplyBatch(updated, nil)
	require.NoError(t, err)

	term, err := store.GetLegalTerm("L1")
	require.NoError(t, err)
	assert.Equal(t, "전세권(개정)", term.Name)
	assert.Equal(t, "물권편", term.Note)
}

func TestTermRelation_CompositeKeyIntegrity(t *testing.T) {
	store := newTestStore(t)

	// two relations differing only in relation_code must both survive
	batch := &NormalizedBatch{
		Relations: []TermRelation{
			{LegalTermID: "L9", DailyTermID: "D9", RelationCode: "1", Relation: "동의어"},
			{LegalTermID: "L9", DailyTermID: "D9", RelationCode: "3", Relation: "유의어"},
		},
	}
	_, err := store.ApplyBatch(batch, nil)
	require.NoError(t, err)

	relations, err := store.RelationsForDailyTerm("D9", 10)
	require.NoError(t, err)
	require.Len(t, relations, 2)
	assert.Equal(t, "1", relations[0].RelationCode)
	assert.Equal(t, "3", relations[1].RelationCode)
}

func TestApplyBatch_WritesMetaAtomically(t *testing.T) {
	store := newTestStore(t)

	meta := &BatchMeta{
		Key:      "crawl:relations:seed:0",
		RunID:    "run-1",
		Strategy: "relations",
	}
	_, err := store.ApplyBatch(sampleBatch(), meta)
	require.NoError(t, err)

	record, err := store.GetMeta("crawl:relations:seed:0")
	require.NoError(t, err)
	assert.Contains(t, record.Value, `"strategy":"relations"`)
	// relation strategy records its relation rows, not the full batch size
	assert.Contains(t, record.Value, `"count":2`)
}

func TestApplyBatch_MetaOverwrittenPerKey(t *testing.T) {
	store := newTestStore(t)

	meta := &BatchMeta{Key: "crawl:lstrm:ga:1", RunID: "run-1", Strategy: "lstrm"}
	_, err := store.ApplyBatch(sampleBatch(), meta)
	require.NoError(t, err)

	meta2 := &BatchMeta{Key: "crawl:lstrm:ga:1", RunID: "run-2", Strategy: "lstrm"}
	_, err = store.ApplyBatch(sampleBatch(), meta2)
	require.NoError(t, err)

	var count int64
	store.DB.Model(&MetaRecord{}).Count(&count)
	assert.EqualValues(t, 1, count)

	record, err := store.GetMeta("crawl:lstrm:ga:1")
	require.NoError(t, err)
	assert.Contains(t, record.Value, `"run_id":"run-2"`)
}

func TestReconcile(t *testing.T) {
	store := newTestStore(t)

	meta := &BatchMeta{Key: "crawl:relations:seed:0", RunID: "run-1", Strategy: "relations"}
	_, err := store.ApplyBatch(sampleBatch(), meta)
	require.NoError(t, err)

	report, err := store.Reconcile("relations")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Batches)
	assert.Equal(t, 2, report.MetaCount)
	assert.Equal(t, 2, report.RowCount)
	assert.True(t, report.Consistent)
}

func TestCursor_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	// missing cursor means a fresh crawl
	cursor, err := store.GetCursor("relations")
	require.NoError(t, err)
	assert.Nil(t, cursor)

	saved := &CrawlCursor{
		Strategy:      "relations",
		SeedIndex:     41,
		SeedID:        "L41",
		BatchChecksum: "abc123",
	}
	require.NoError(t, store.SaveCursor(saved))

	// overwrite advances the same row
	saved.SeedIndex = 42
	saved.SeedID = "L42"
	require.NoError(t, store.SaveCursor(saved))

	cursor, err = store.GetCursor("relations")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, 42, cursor.SeedIndex)
	assert.Equal(t, "L42", cursor.SeedID)
	assert.WithinDuration(t, time.Now(), cursor.UpdatedAt, time.Minute)

	var count int64
	store.DB.Model(&CrawlCursor{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFindDailyTermsByName_ExactMatchFirst(t *testing.T) {
	store := newTestStore(t)

	batch := &NormalizedBatch{
		DailyTerms: []DailyTerm{
			{ID: "D1", Name: "전세금반환"},
			{ID: "D2", Name: "전세금"},
			{ID: "D3", Name: "전세금 보증"},
			{ID: "D4", Name: "월세"},
		},
	}
	_, err := store.ApplyBatch(batch, nil)
	require.NoError(t, err)

	terms, err := store.FindDailyTermsByName("전세금", 2)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "전세금", terms[0].Name)
}

func TestCodeBridge_RowsPerCode(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ApplyBatch(sampleBatch(), nil)
	require.NoError(t, err)

	codes, err := store.DictCodesForLegalTerm("L1")
	require.NoError(t, err)
	assert.Equal(t, []string{"01", "03"}, codes)

	lawCodes, err := store.LawCodesForLegalTerm("L1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A0002"}, lawCodes)
}

func TestListLegalTermIDs(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ApplyBatch(sampleBatch(), nil)
	require.NoError(t, err)

	ids, err := store.ListLegalTermIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, ids)
}
