package termgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot-go/internal/lawapi"
)

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"01", "03"}, SplitCodes("01,03"))
	assert.Equal(t, []string{"01", "03"}, SplitCodes(" 01 , 03 ,"))
	assert.Equal(t, []string{"01"}, SplitCodes("01,01"))
	assert.Nil(t, SplitCodes(""))
}

func TestCodes_RoundTrip(t *testing.T) {
	codes := SplitCodes("01,03")
	assert.Equal(t, "01,03", JoinCodes(codes))
}

func TestSplitIDs_StripsInnerSpaces(t *testing.T) {
	assert.Equal(t, []string{"L10", "L11"}, SplitIDs("L10, L 11"))
}

func TestBuildTermBatch(t *testing.T) {
	items := []lawapi.Item{
		{
			"법령용어ID": "L1",
			"법령용어명":  "전세권",
			"사전구분코드": "01,03",
			"법령종류코드": "A0002",
			"비고":     "물권",
		},
		{
			"법령용어ID": "L2,L3", // joined IDs become separate rows
			"법령용어명":  "임대차",
		},
		{"법령용어명": "무시"}, // no ID, skipped
	}

	batch := BuildTermBatch(items)
	require.Len(t, batch.LegalTerms, 3)
	assert.Equal(t, "L1", batch.LegalTerms[0].ID)
	assert.Equal(t, "전세권", batch.LegalTerms[0].Name)
	assert.Equal(t, "물권", batch.LegalTerms[0].Note)
	assert.Equal(t, "L2", batch.LegalTerms[1].ID)
	assert.Equal(t, "L3", batch.LegalTerms[2].ID)
	assert.Equal(t, "임대차", batch.LegalTerms[2].Name)

	require.Len(t, batch.DictCodes, 2)
	assert.Equal(t, "01", batch.DictCodes[0].Code)
	assert.Equal(t, "03", batch.DictCodes[1].Code)
	require.Len(t, batch.LawCodes, 1)
	assert.Equal(t, "A0002", batch.LawCodes[0].Code)
	assert.Empty(t, batch.Relations)
}

func TestBuildTermBatch_DedupesWithinBatch(t *testing.T) {
	items := []lawapi.Item{
		{"법령용어ID": "L1", "법령용어명": "전세권", "사전구분코드": "01"},
		{"법령용어ID": "L1", "법령용어명": "전세권", "사전구분코드": "01"},
	}
	batch := BuildTermBatch(items)
	assert.Len(t, batch.LegalTerms, 1)
	assert.Len(t, batch.DictCodes, 1)
}

func TestBuildRelationBatch(t *testing.T) {
	items := []lawapi.Item{
		{
			"연계용어id": "D1",
			"일상용어명":  "전세금",
			"용어관계코드": "1",
			"용어관계":   "동의어",
			"출처":     "국민 제안",
		},
		{
			"연계용어id": "D1",
			"일상용어명":  "전세금",
			"용어관계코드": "3", // same pair, different relation: second row
			"용어관계":   "유의어",
		},
		{"일상용어명": "버림"}, // no ID, skipped
	}

	batch := BuildRelationBatch("L1", "전세권", items)
	require.Len(t, batch.LegalTerms, 1)
	assert.Equal(t, "L1", batch.LegalTerms[0].ID)
	require.Len(t, batch.DailyTerms, 1)
	assert.Equal(t, "D1", batch.DailyTerms[0].ID)
	assert.Equal(t, "국민 제안", batch.DailyTerms[0].Source)
	require.Len(t, batch.Relations, 2)
	assert.Equal(t, "1", batch.Relations[0].RelationCode)
	assert.Equal(t, "3", batch.Relations[1].RelationCode)
	assert.Equal(t, "전세금", batch.Relations[0].DailyTermName)
}

func TestBuildRelationBatch_NoSeed(t *testing.T) {
	batch := BuildRelationBatch("", "", []lawapi.Item{{"연계용어id": "D1"}})
	assert.True(t, batch.Empty())
}

func TestBuildDailyBatch(t *testing.T) {
	items := []lawapi.Item{
		{"일상용어id": "D1", "일상용어명": "전세금", "출처": "민원"},
		{"일상용어id": "D1", "일상용어명": "전세금"},
	}
	batch := BuildDailyBatch(items)
	require.Len(t, batch.DailyTerms, 1)
	assert.Equal(t, "전세금", batch.DailyTerms[0].Name)
}

func TestArticleFromItem(t *testing.T) {
	item := lawapi.Item{
		"법령ID":   "001234",
		"법령명":    "주택임대차보호법",
		"조번호":    "3",
		"조령지번호":  "0",
		"조문내용":   "제3조(대항력 등) ① 임대차는 그 등기가 없는 경우에도...",
		"용어구분코드": "01",
	}
	record := ArticleFromItem(item)
	assert.Equal(t, "주택임대차보호법", record.LawName)
	assert.Equal(t, "3", record.ArticleNumber)
	assert.Equal(t, "01", record.TermTypeCode)
}
