package lawapi

import (
	"fmt"
	"strings"

	"github.com/lawglot/lawglot-go/internal/errors"
)

// Endpoint selects one of the eight upstream DRF endpoints.
type Endpoint int

const (
	EndpointLegalSearch    Endpoint = iota // 0: lstrmAI, legal-term keyword search
	EndpointDailySearch                    // 1: dlytrm, daily-term keyword search
	EndpointLegalList                      // 2: lstrm, legal-term listing (gana sweep)
	EndpointDailyToLegal                   // 3: dlytrmRlt, daily term -> legal terms
	EndpointLegalToArticle                 // 4: lstrmRltJo, legal term -> articles
	EndpointLegalToDaily                   // 5: lstrmRlt, legal term -> daily terms
	EndpointArticleToLegal                 // 6: joRltLstrm, article -> legal terms
	EndpointArticle                        // 7: law, statute article body
)

// endpointSpec describes how to call one upstream endpoint: which base URL
// it lives on, its target parameter, and which request parameters must be
// present. Each entry of required is a group of alternatives, at least one
// key per group must be set.
type endpointSpec struct {
	target   string
	service  bool // true: lawService.do, false: lawSearch.do
	paged    bool // accepts display/page
	required [][]string
}

var endpointSpecs = map[Endpoint]endpointSpec{
	EndpointLegalSearch:    {target: "lstrmAI", paged: true, required: [][]string{{"query"}}},
	EndpointDailySearch:    {target: "dlytrm", paged: true, required: [][]string{{"query"}}},
	EndpointLegalList:      {target: "lstrm", paged: true, required: [][]string{{"query", "MST", "gana"}}},
	EndpointDailyToLegal:   {target: "dlytrmRlt", service: true, required: [][]string{{"query", "MST"}}},
	EndpointLegalToArticle: {target: "lstrmRltJo", service: true, required: [][]string{{"query", "MST"}}},
	EndpointLegalToDaily:   {target: "lstrmRlt", service: true, required: [][]string{{"MST"}}},
	EndpointArticleToLegal: {target: "joRltLstrm", service: true, required: [][]string{{"MST"}}},
	EndpointArticle:        {target: "law", service: true, required: [][]string{{"ID", "MST"}}},
}

// Valid reports whether e is one of the known endpoints.
func (e Endpoint) Valid() bool {
	_, ok := endpointSpecs[e]
	return ok
}

// Target returns the upstream target parameter value for the endpoint.
func (e Endpoint) Target() string {
	return endpointSpecs[e].target
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	if spec, ok := endpointSpecs[e]; ok {
		return fmt.Sprintf("%d(%s)", int(e), spec.target)
	}
	return fmt.Sprintf("%d(unknown)", int(e))
}

// Params is the request parameter set for a Call. Paging parameters are
// ignored on non-paged endpoints.
type Params struct {
	Query   string
	MST     string
	ID      string
	Gana    string
	Page    int
	Display int
}

func (p *Params) value(key string) string {
	switch key {
	case "query":
		return p.Query
	case "MST":
		return p.MST
	case "ID":
		return p.ID
	case "gana":
		return p.Gana
	default:
		return ""
	}
}

// validateParams fails fast when a required parameter group has no value,
// so malformed requests are never sent upstream.
func validateParams(endpoint Endpoint, params *Params) error {
	spec, ok := endpointSpecs[endpoint]
	if !ok {
		return errors.Newf("unknown endpoint index %d, valid range is 0-7", int(endpoint)).
			Component("lawapi").
			Category(errors.CategoryValidation).
			Build()
	}
	for _, group := range spec.required {
		satisfied := false
		for _, key := range group {
			if strings.TrimSpace(params.value(key)) != "" {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return errors.Newf("endpoint %s requires one of: %s", endpoint, strings.Join(group, ", ")).
				Component("lawapi").
				Category(errors.CategoryValidation).
				Context("endpoint", int(endpoint)).
				Build()
		}
	}
	return nil
}
