package termgraph

import "github.com/lawglot/lawglot-go/internal/lawapi"

// Query-time record types. These are projections assembled during
// resolution; only the batch types in builder.go are ever persisted.

// DailyTermRecord is one daily-term candidate.
type DailyTermRecord struct {
	ID               string
	Name             string
	Source           string
	StemRelationLink string
}

// RelatedLegalTerm is one legal term reached from a daily term.
type RelatedLegalTerm struct {
	ID           string
	Name         string
	RelationCode string
	Relation     string
	Note         string
}

// RelatedDailyTerm is one daily term reached from a legal term.
type RelatedDailyTerm struct {
	ID           string
	Name         string
	RelationCode string
	Relation     string
}

// ArticleRecord is one statutory article projection. Article text follows
// statute revisions, so these are fetched (or TTL-cached) at resolution
// time and never written to the store.
type ArticleRecord struct {
	LawID         string
	LawName       string
	ArticleNumber string
	OrderNumber   string
	Content       string
	TermTypeCode  string
	TermType      string
	Link          string
}

// Per-endpoint field-candidate tables. Upstream names the same concept
// differently per endpoint and occasionally per response, so every field
// lists its known spellings in preference order.

// DailyTermFromItem maps an endpoint 1 (dlytrm) item.
func DailyTermFromItem(item lawapi.Item) DailyTermRecord {
	return DailyTermRecord{
		ID:               item.Get("일상용어id", "일상용어ID", "id"),
		Name:             item.Get("일상용어명", "일상용어"),
		Source:           item.Get("출처"),
		StemRelationLink: item.Get("어간관계링크", "용어간관계링크"),
	}
}

// RelatedLegalFromItem maps an endpoint 3 (dlytrmRlt) item.
func RelatedLegalFromItem(item lawapi.Item) RelatedLegalTerm {
	return RelatedLegalTerm{
		ID:           item.Get("관련용어id", "법령용어id", "법령용어ID", "법령용어코드", "id"),
		Name:         item.Get("법령용어명", "법령용어"),
		RelationCode: item.Get("용어관계코드"),
		Relation:     item.Get("용어관계"),
		Note:         item.Get("비고"),
	}
}

// RelatedDailyFromItem maps an endpoint 5 (lstrmRlt) item.
func RelatedDailyFromItem(item lawapi.Item) RelatedDailyTerm {
	return RelatedDailyTerm{
		ID:           item.Get("연계용어id", "일상용어id", "id"),
		Name:         item.Get("일상용어명", "연계용어명"),
		RelationCode: item.Get("용어관계코드"),
		Relation:     item.Get("용어관계"),
	}
}

// ArticleFromItem maps an endpoint 4 (lstrmRltJo) or endpoint 7 (law) item.
func ArticleFromItem(item lawapi.Item) ArticleRecord {
	return ArticleRecord{
		LawID:         item.Get("법령ID", "법령id", "id"),
		LawName:       item.Get("법령명", "법령이름"),
		ArticleNumber: item.Get("조번호", "조문번호"),
		OrderNumber:   item.Get("조령지번호"),
		Content:       item.Get("조문내용"),
		TermTypeCode:  item.Get("용어구분코드"),
		TermType:      item.Get("용어구분"),
		Link:          item.Get("조문관계어링크", "조문관계용어링크"),
	}
}
