package lawapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lawglot/lawglot-go/internal/errors"
)

// Item is one flattened upstream record. Keys keep their upstream names
// (mostly Korean), values are NFC-normalized strings. Field-name mapping to
// internal entities happens in the termgraph package.
type Item map[string]string

// Get returns the first non-empty value among the candidate keys. Candidates
// are also matched ignoring spaces, because upstream tag names occasionally
// carry stray whitespace.
func (it Item) Get(candidates ...string) string {
	for _, cand := range candidates {
		if val, ok := it[cand]; ok && val != "" {
			return val
		}
	}
	for _, cand := range candidates {
		want := strings.ReplaceAll(cand, " ", "")
		for key, val := range it {
			if val == "" {
				continue
			}
			if strings.Contains(strings.ReplaceAll(key, " ", ""), want) {
				return val
			}
		}
	}
	return ""
}

// RawRecord is the normalized result of one upstream call.
type RawRecord struct {
	Endpoint   Endpoint
	TotalCount int
	Items      []Item
}

// totalCountKeys are the known spellings of the result-count field across
// endpoints; a key containing "total" is the last resort.
var totalCountKeys = []string{"totalCnt", "검색결과개수", "검색결과수", "전체건수", "count"}

// decodeRecord turns a heterogeneous upstream JSON body into a RawRecord.
// Every endpoint wraps its payload differently, so instead of one schema per
// endpoint the decoder walks the document for the first list of objects and
// flattens it. Missing fields simply stay absent from the Item.
func decodeRecord(endpoint Endpoint, body []byte) (*RawRecord, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.New(err).
			Component("lawapi").
			Category(errors.CategoryParsing).
			Context("endpoint", int(endpoint)).
			Build()
	}

	record := &RawRecord{Endpoint: endpoint}
	record.TotalCount = findTotalCount(doc)

	if list := firstItemList(doc); list != nil {
		record.Items = make([]Item, 0, len(list))
		for _, entry := range list {
			record.Items = append(record.Items, flattenItem(entry))
		}
	}
	return record, nil
}

// firstItemList walks the document shallowly and returns the first list
// whose elements are objects.
func firstItemList(doc any) []map[string]any {
	switch node := doc.(type) {
	case map[string]any:
		for _, val := range node {
			if list, ok := asItemList(val); ok {
				return list
			}
		}
		for _, val := range node {
			if child, ok := val.(map[string]any); ok {
				if list := firstItemList(child); list != nil {
					return list
				}
			}
		}
	case []any:
		for _, val := range node {
			if list := firstItemList(val); list != nil {
				return list
			}
		}
	}
	return nil
}

func asItemList(val any) ([]map[string]any, bool) {
	raw, ok := val.([]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	list := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		list = append(list, obj)
	}
	return list, true
}

// flattenItem converts one upstream object to an Item. Scalar values become
// strings; single-level nested objects are flattened with their child keys
// so relation payloads keep their fields reachable.
func flattenItem(obj map[string]any) Item {
	item := make(Item, len(obj))
	for key, val := range obj {
		key = norm.NFC.String(strings.TrimSpace(key))
		switch typed := val.(type) {
		case string:
			item[key] = norm.NFC.String(strings.TrimSpace(typed))
		case float64:
			item[key] = strconv.FormatFloat(typed, 'f', -1, 64)
		case bool:
			item[key] = strconv.FormatBool(typed)
		case map[string]any:
			for childKey, childVal := range typed {
				if s, ok := childVal.(string); ok {
					item[norm.NFC.String(strings.TrimSpace(childKey))] = norm.NFC.String(strings.TrimSpace(s))
				}
			}
		case nil:
			// leave absent
		default:
			item[key] = fmt.Sprintf("%v", typed)
		}
	}
	return item
}

func findTotalCount(doc any) int {
	node, ok := doc.(map[string]any)
	if !ok {
		return 0
	}
	for _, key := range totalCountKeys {
		if count, ok := intValue(lookupKey(node, key)); ok {
			return count
		}
	}
	for key, val := range node {
		if strings.Contains(strings.ToLower(key), "total") {
			if count, ok := intValue(val); ok {
				return count
			}
		}
	}
	// one level down: search endpoints wrap everything in a single object
	for _, val := range node {
		if child, ok := val.(map[string]any); ok {
			if count := findTotalCount(child); count > 0 {
				return count
			}
		}
	}
	return 0
}

func lookupKey(node map[string]any, key string) any {
	if val, ok := node[key]; ok {
		return val
	}
	return nil
}

func intValue(val any) (int, bool) {
	switch typed := val.(type) {
	case float64:
		return int(typed), true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
