package termgraph

import (
	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/lawapi"
)

// BuildTermBatch normalizes endpoint 2 (term listing) items into store rows.
// Listing records occasionally join several term IDs into one comma-separated
// field; each ID becomes its own LegalTerm row sharing the record's name and
// links. Classification codes are exploded into bridge rows the same way.
// Items without any ID are skipped, duplicates within the batch collapse to
// their first occurrence.
func BuildTermBatch(items []lawapi.Item) *datastore.NormalizedBatch {
	batch := &datastore.NormalizedBatch{}
	seenTerms := make(map[string]struct{}, len(items))
	seenDict := make(map[[2]string]struct{})
	seenLaw := make(map[[2]string]struct{})

	for _, item := range items {
		rawID := item.Get("법령용어ID", "법령용어id", "id")
		if rawID == "" {
			continue
		}
		name := item.Get("법령용어명", "법령용어")
		note := item.Get("비고")
		termsLink := item.Get("법령용어간관계링크", "용어간관계링크")
		articlesLink := item.Get("조문법령용어간관계링크", "조문관계링크")
		dictCodes := SplitCodes(item.Get("사전구분코드"))
		lawCodes := SplitCodes(item.Get("법령종류코드"))

		for _, id := range SplitIDs(rawID) {
			if _, dup := seenTerms[id]; !dup {
				seenTerms[id] = struct{}{}
				batch.LegalTerms = append(batch.LegalTerms, datastore.LegalTerm{
					ID:           id,
					Name:         name,
					Note:         note,
					TermsLink:    termsLink,
					ArticlesLink: articlesLink,
				})
			}
			for _, code := range dictCodes {
				key := [2]string{id, code}
				if _, dup := seenDict[key]; dup {
					continue
				}
				seenDict[key] = struct{}{}
				batch.DictCodes = append(batch.DictCodes, datastore.LegalTermDictCode{
					LegalTermID: id,
					Code:        code,
				})
			}
			for _, code := range lawCodes {
				key := [2]string{id, code}
				if _, dup := seenLaw[key]; dup {
					continue
				}
				seenLaw[key] = struct{}{}
				batch.LawCodes = append(batch.LawCodes, datastore.LegalTermLawCode{
					LegalTermID: id,
					Code:        code,
				})
			}
		}
	}
	return batch
}

// BuildRelationBatch normalizes endpoint 5 (legal-to-daily relation) items
// fetched for one seed legal term. Each item yields the daily term itself
// plus one relation row keyed (seed, daily, relation code). Items lacking a
// daily-term ID are skipped.
func BuildRelationBatch(seedID, seedName string, items []lawapi.Item) *datastore.NormalizedBatch {
	batch := &datastore.NormalizedBatch{}
	if seedID == "" {
		return batch
	}
	seenDaily := make(map[string]struct{}, len(items))
	seenRel := make(map[[3]string]struct{}, len(items))

	if seedName != "" {
		batch.LegalTerms = append(batch.LegalTerms, datastore.LegalTerm{
			ID:   seedID,
			Name: seedName,
		})
	}

	for _, item := range items {
		related := RelatedDailyFromItem(item)
		if related.ID == "" {
			continue
		}
		if _, dup := seenDaily[related.ID]; !dup {
			seenDaily[related.ID] = struct{}{}
			batch.DailyTerms = append(batch.DailyTerms, datastore.DailyTerm{
				ID:     related.ID,
				Name:   related.Name,
				Source: item.Get("출처"),
			})
		}
		relKey := [3]string{seedID, related.ID, related.RelationCode}
		if _, dup := seenRel[relKey]; dup {
			continue
		}
		seenRel[relKey] = struct{}{}
		batch.Relations = append(batch.Relations, datastore.TermRelation{
			LegalTermID:   seedID,
			DailyTermID:   related.ID,
			RelationCode:  related.RelationCode,
			Relation:      related.Relation,
			DailyTermName: related.Name,
		})
	}
	return batch
}

// BuildDailyBatch normalizes endpoint 1 (daily-term search) items. Used when
// resolution falls through to the live API and wants the fetched candidates
// persisted for the next lookup.
func BuildDailyBatch(items []lawapi.Item) *datastore.NormalizedBatch {
	batch := &datastore.NormalizedBatch{}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		record := DailyTermFromItem(item)
		if record.ID == "" {
			continue
		}
		if _, dup := seen[record.ID]; dup {
			continue
		}
		seen[record.ID] = struct{}{}
		batch.DailyTerms = append(batch.DailyTerms, datastore.DailyTerm{
			ID:               record.ID,
			Name:             record.Name,
			Source:           record.Source,
			StemRelationLink: record.StemRelationLink,
		})
	}
	return batch
}
