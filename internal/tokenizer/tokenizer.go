// Package tokenizer extracts legal-oriented keywords from colloquial Korean
// text. It is a rule-based pipeline: tokenize, strip particles and sentence
// endings, recover verb base forms, drop stopwords, then expand with domain
// synonyms. No morphological analyzer is involved, the rules cover the
// registers that show up in layperson legal questions.
package tokenizer

import (
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more Hangul syllables or two or more
// ASCII alphanumerics. Single syllables carry too little meaning to search.
var tokenPattern = regexp.MustCompile(`[가-힣]{2,}|[A-Za-z0-9]{2,}`)

// trailingParticles are full predicate endings removed from a token tail.
var trailingParticles = regexp.MustCompile(
	`(입니다|합니다|했다|했음|했어요|했는데|했지만|하고|하며|이다|였다|하나요|하냐|하니|하네|되나요|됩니까)$`)

// singleParticle is one trailing case particle.
var singleParticle = regexp.MustCompile(`[이가은는을를의에와과도만까지조차부터]$`)

// defaultStopwords are connectives, generic verbs, interrogatives and
// question endings that never make useful search keywords.
var defaultStopwords = map[string]struct{}{}

func init() {
	for _, word := range []string{
		"그리고", "그러나", "하지만", "그래서", "그러면", "그런데",
		"하다", "되다", "이다", "있다", "없다", "않다", "알다", "같다", "같은",
		"거", "것", "정도", "부분", "때문", "관련", "대한", "이번", "이번에",
		"우리", "저희", "제가", "나는", "너무", "매우", "정말",
		"어떻게", "어디", "언제", "왜", "무엇", "뭐", "몇", "누가", "누구", "어느",
		"해야", "해야만", "해야지", "해야하나", "해야되나", "해야되나요",
		"하나요", "하냐", "하니", "하네", "했나요", "했는데", "했습니까", "됩니까", "되나요",
	} {
		defaultStopwords[word] = struct{}{}
	}
}

// endingsToStrip are polite and connective sentence endings, longest first so
// the longest match wins.
var endingsToStrip = []string{
	"이었습니다만", "였습니다만", "이었습니다", "이었어요", "이었는데", "였습니다", "이었습",
	"입니다만", "습니다만", "했습니다", "했습니까",
	"입니다", "입니까", "습니다", "습니까",
	"였어요", "했어요", "했는데", "했지만", "했으니", "했으며", "했으나", "했으면", "했습",
	"었어요", "겠어요", "겠네요", "겠는데", "겠습",
	"이라서", "이라면", "이면요", "였는데",
	"는데", "라서", "이면", "네요", "에요", "예요", "어요", "아서", "어서",
}

// verbBaseRule recovers a dictionary base form from a conjugated stem.
type verbBaseRule struct {
	pattern *regexp.Regexp
	base    string
}

var verbBaseRules = []verbBaseRule{
	{regexp.MustCompile(`빌려줬|빌려주었|빌려주었습|빌려줬습`), "빌려주다"},
	{regexp.MustCompile(`빌렸|빌려|빌리었|빌리었습|빌렸습`), "빌리다"},
	{regexp.MustCompile(`타였|탔|탔다|탔습|타겠`), "타다"},
	{regexp.MustCompile(`(했|하였|합니다|했습|해요)$`), "하다"},
}

// synonymSeeds expand extracted keywords into neighboring legal vocabulary.
var synonymSeeds = map[string][]string{
	"보험":  {"보험금", "보험료", "보험계약", "공제", "손해보험", "자동차보험"},
	"사고":  {"손해", "배상", "책임", "과실"},
	"임대":  {"임대차", "월세", "전세", "보증금"},
	"전세":  {"보증금", "임차인", "임대인"},
	"계약":  {"계약해지", "해지", "위약금"},
	"임금":  {"급여", "월급", "체불"},
	"해고":  {"부당해고", "정직", "징계"},
	"대여":  {"차용", "금전대여", "채무", "채권", "변제"},
	"빌리다": {"차용", "금전대여", "채무", "채권", "변제", "채무불이행"},
	"돈":   {"금전", "채무", "채권", "변제"},
	"잠수":  {"연락두절", "채무불이행", "기망", "사기"},
}

// searchSynonyms map raw colloquial tokens straight to formal search terms.
var searchSynonyms = map[string][]string{
	"잠수":      {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를":     {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를탔다":   {"연락두절", "연락불능", "행방불명", "도피"},
	"잠수를탔습니다": {"연락두절", "연락불능", "행방불명", "도피"},
	"연락":      {"연락두절", "연락불능"},
	"연락이안된다":  {"연락두절", "연락불능"},
	"친구":      {"지인", "동료"},
	"아는":      {"지인", "친구"},
	"형":       {"지인", "친구"},
	"빌려줬다":    {"차용", "금전대여", "채무"},
	"빌려줬는데":   {"차용", "금전대여", "채무", "변제"},
	"돈":       {"금전", "채무", "채권", "변제"},
	"못받았다":    {"미수", "채권", "채무불이행"},
	"못받았어요":   {"미수", "채권", "채무불이행"},
}

// domainExpandRule adds formal terms whenever a token touches its pattern.
type domainExpandRule struct {
	pattern   *regexp.Regexp
	additions []string
}

var domainExpandRules = []domainExpandRule{
	{regexp.MustCompile(`빌리|빌려|대여|꿔|차용`), []string{"차용", "금전대여", "채무", "변제", "채권", "채무불이행"}},
	{regexp.MustCompile(`돈|금전|채무|채권`), []string{"금전", "채무", "채권", "변제"}},
	{regexp.MustCompile(`잠수|연락|두절|도피`), []string{"연락두절", "채무불이행", "기망", "사기"}},
	{regexp.MustCompile(`사기|기망|속임`), []string{"사기", "기망", "형사", "손해배상"}},
}

// Tokenize splits text into raw candidate tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// normalizeToken strips predicate endings and a trailing case particle.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = trailingParticles.ReplaceAllString(token, "")
	token = singleParticle.ReplaceAllString(token, "")
	return token
}

// deriveMeaningUnits peels a sentence ending off the token and recovers verb
// base forms, returning the extra candidates this produces.
func deriveMeaningUnits(token string) []string {
	var units []string

	for _, ending := range endingsToStrip {
		if strings.HasSuffix(token, ending) && runeLen(token)-runeLen(ending) >= 2 {
			stripped := strings.TrimSuffix(token, ending)
			units = appendUnique(units, stripped)
			token = stripped
			break
		}
	}

	for _, rule := range verbBaseRules {
		if rule.pattern.MatchString(token) {
			units = appendUnique(units, rule.base)
		}
	}

	if strings.HasSuffix(token, "하") {
		units = appendUnique(units, "하다")
	}

	kept := units[:0]
	for _, unit := range units {
		if runeLen(unit) >= 2 {
			kept = append(kept, unit)
		}
	}
	return kept
}

// expandDomain returns the formal additions of every matching domain rule.
func expandDomain(token string) []string {
	var extras []string
	for _, rule := range domainExpandRules {
		if rule.pattern.MatchString(token) {
			extras = append(extras, rule.additions...)
		}
	}
	return extras
}

// ExpandRelated generates search-expansion terms for one raw token.
func ExpandRelated(token string) []string {
	var related []string
	related = append(related, searchSynonyms[token]...)
	related = append(related, expandDomain(token)...)

	var deduped []string
	for _, term := range related {
		if term != token {
			deduped = appendUnique(deduped, term)
		}
	}
	return deduped
}

// Options tunes keyword extraction.
type Options struct {
	TopK           int      // keyword cap before synonym expansion
	ExtraStopwords []string // merged with the built-in stopword set
	ExpandSynonyms bool     // append synonym-seed and domain expansions
}

// DefaultOptions returns the standard extraction options.
func DefaultOptions() Options {
	return Options{TopK: 8, ExpandSynonyms: true}
}

// ExtractKeywords extracts legal-oriented keywords from Korean text,
// preserving first-occurrence order.
func ExtractKeywords(text string, opts Options) []string {
	if text == "" {
		return nil
	}
	if opts.TopK <= 0 {
		opts.TopK = 8
	}

	stopwords := defaultStopwords
	if len(opts.ExtraStopwords) > 0 {
		stopwords = make(map[string]struct{}, len(defaultStopwords)+len(opts.ExtraStopwords))
		for word := range defaultStopwords {
			stopwords[word] = struct{}{}
		}
		for _, word := range opts.ExtraStopwords {
			stopwords[word] = struct{}{}
		}
	}

	var tokens []string
	for _, raw := range Tokenize(text) {
		normalized := normalizeToken(raw)
		if runeLen(normalized) < 2 {
			continue
		}
		if _, stop := stopwords[normalized]; stop {
			continue
		}
		tokens = appendUnique(tokens, normalized)
		for _, unit := range deriveMeaningUnits(normalized) {
			tokens = appendUnique(tokens, unit)
		}
	}

	keywords := tokens
	if len(keywords) > opts.TopK {
		keywords = keywords[:opts.TopK]
	}

	if opts.ExpandSynonyms {
		for _, keyword := range append([]string(nil), keywords...) {
			for _, synonym := range synonymSeeds[keyword] {
				if _, stop := stopwords[synonym]; stop {
					continue
				}
				keywords = appendUnique(keywords, synonym)
			}
			for _, extra := range expandDomain(keyword) {
				if _, stop := stopwords[extra]; stop {
					continue
				}
				keywords = appendUnique(keywords, extra)
			}
		}
	}
	return keywords
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func runeLen(s string) int {
	return len([]rune(s))
}
