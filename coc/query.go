package coc

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query option names as the API spells them.
const (
	OptName          = "name"
	OptWarFrequency  = "warFrequency"
	OptLocationID    = "locationId"
	OptMinMembers    = "minMembers"
	OptMaxMembers    = "maxMembers"
	OptMinClanPoints = "minClanPoints"
	OptMinClanLevel  = "minClanLevel"
	OptLabelIDs      = "labelIds"
	OptLimit         = "limit"
	OptAfter         = "after"
	OptBefore        = "before"
	OptClanTag       = "clanTag"
)

// Ptr returns a pointer to v, for filling optional query fields.
func Ptr[T any](v T) *T {
	return &v
}

// SearchClansQuery filters the clan search. Nil fields are not sent.
type SearchClansQuery struct {
	Name          *string
	WarFrequency  *string
	LocationID    *int
	MinMembers    *int
	MaxMembers    *int
	MinClanPoints *int
	MinClanLevel  *int
	// LabelIDs is a comma separated list of label ids.
	LabelIDs *string
	Limit    *int
	After    *string
	Before   *string
}

// ListLocationsQuery pages through the location list.
type ListLocationsQuery struct {
	Limit  *int
	After  *string
	Before *string
}

// GetWarLogQuery selects a clan's war log. ClanTag is required and becomes
// part of the request path rather than a query parameter.
type GetWarLogQuery struct {
	ClanTag string
	Limit   *int
	After   *string
	Before  *string
}

// optionSetter parses one raw option value into a query.
type optionSetter[Q any] func(q *Q, value string) error

func stringOption[Q any](target func(*Q) **string) optionSetter[Q] {
	return func(q *Q, value string) error {
		*target(q) = &value
		return nil
	}
}

func intOption[Q any](target func(*Q) **int) optionSetter[Q] {
	return func(q *Q, value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
		*target(q) = &n
		return nil
	}
}

var searchClansOptions = map[string]optionSetter[SearchClansQuery]{
	OptName:          stringOption(func(q *SearchClansQuery) **string { return &q.Name }),
	OptWarFrequency:  stringOption(func(q *SearchClansQuery) **string { return &q.WarFrequency }),
	OptLocationID:    intOption(func(q *SearchClansQuery) **int { return &q.LocationID }),
	OptMinMembers:    intOption(func(q *SearchClansQuery) **int { return &q.MinMembers }),
	OptMaxMembers:    intOption(func(q *SearchClansQuery) **int { return &q.MaxMembers }),
	OptMinClanPoints: intOption(func(q *SearchClansQuery) **int { return &q.MinClanPoints }),
	OptMinClanLevel:  intOption(func(q *SearchClansQuery) **int { return &q.MinClanLevel }),
	OptLabelIDs:      stringOption(func(q *SearchClansQuery) **string { return &q.LabelIDs }),
	OptLimit:         intOption(func(q *SearchClansQuery) **int { return &q.Limit }),
	OptAfter:         stringOption(func(q *SearchClansQuery) **string { return &q.After }),
	OptBefore:        stringOption(func(q *SearchClansQuery) **string { return &q.Before }),
}

var listLocationsOptions = map[string]optionSetter[ListLocationsQuery]{
	OptLimit:  intOption(func(q *ListLocationsQuery) **int { return &q.Limit }),
	OptAfter:  stringOption(func(q *ListLocationsQuery) **string { return &q.After }),
	OptBefore: stringOption(func(q *ListLocationsQuery) **string { return &q.Before }),
}

var getWarLogOptions = map[string]optionSetter[GetWarLogQuery]{
	OptClanTag: func(q *GetWarLogQuery, value string) error {
		q.ClanTag = value
		return nil
	},
	OptLimit:  intOption(func(q *GetWarLogQuery) **int { return &q.Limit }),
	OptAfter:  stringOption(func(q *GetWarLogQuery) **string { return &q.After }),
	OptBefore: stringOption(func(q *GetWarLogQuery) **string { return &q.Before }),
}

// parseOptions builds a Q from raw options. Every option outside allowed is
// reported in a single QueryError before any value is parsed.
func parseOptions[Q any](query string, options map[string]string, allowed map[string]optionSetter[Q]) (Q, error) {
	var q Q

	var unknown []string
	for name := range options {
		if _, ok := allowed[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return q, &QueryError{
			Query:   query,
			Options: unknown,
			Reason:  "options not allowed",
		}
	}

	for _, name := range sortedKeys(options) {
		if err := allowed[name](&q, options[name]); err != nil {
			return q, &QueryError{
				Query:   query,
				Options: []string{name},
				Reason:  "invalid value",
				Err:     err,
			}
		}
	}
	return q, nil
}

// SearchClansOptions returns the option names NewSearchClansQuery accepts.
func SearchClansOptions() []string {
	return sortedKeys(searchClansOptions)
}

// ListLocationsOptions returns the option names NewListLocationsQuery accepts.
func ListLocationsOptions() []string {
	return sortedKeys(listLocationsOptions)
}

// GetWarLogOptions returns the option names NewGetWarLogQuery accepts.
func GetWarLogOptions() []string {
	return sortedKeys(getWarLogOptions)
}

// NewSearchClansQuery builds a SearchClansQuery from raw name/value options.
func NewSearchClansQuery(options map[string]string) (SearchClansQuery, error) {
	return parseOptions("SearchClans", options, searchClansOptions)
}

// NewListLocationsQuery builds a ListLocationsQuery from raw name/value options.
func NewListLocationsQuery(options map[string]string) (ListLocationsQuery, error) {
	return parseOptions("ListLocations", options, listLocationsOptions)
}

// NewGetWarLogQuery builds a GetWarLogQuery from raw name/value options.
// The clanTag option is required.
func NewGetWarLogQuery(options map[string]string) (GetWarLogQuery, error) {
	q, err := parseOptions("GetWarLog", options, getWarLogOptions)
	if err != nil {
		return q, err
	}
	if err := q.validate(); err != nil {
		return q, err
	}
	return q, nil
}

// Params returns the query parameters for the fields that are set.
func (q SearchClansQuery) Params() url.Values {
	params := url.Values{}
	setString(params, OptName, q.Name)
	setString(params, OptWarFrequency, q.WarFrequency)
	setInt(params, OptLocationID, q.LocationID)
	setInt(params, OptMinMembers, q.MinMembers)
	setInt(params, OptMaxMembers, q.MaxMembers)
	setInt(params, OptMinClanPoints, q.MinClanPoints)
	setInt(params, OptMinClanLevel, q.MinClanLevel)
	setString(params, OptLabelIDs, q.LabelIDs)
	setPage(params, q.Limit, q.After, q.Before)
	return params
}

// Params returns the query parameters for the fields that are set.
func (q ListLocationsQuery) Params() url.Values {
	params := url.Values{}
	setPage(params, q.Limit, q.After, q.Before)
	return params
}

// Params returns the paging parameters that are set. ClanTag is not included.
func (q GetWarLogQuery) Params() url.Values {
	params := url.Values{}
	setPage(params, q.Limit, q.After, q.Before)
	return params
}

func (q GetWarLogQuery) validate() error {
	return requireTag("GetWarLog", q.ClanTag)
}

// requireTag rejects a blank clan tag, which would otherwise address the
// clan search endpoint.
func requireTag(query, tag string) error {
	if strings.TrimSpace(tag) == "" {
		return &QueryError{
			Query:   query,
			Options: []string{OptClanTag},
			Reason:  "missing required option",
		}
	}
	return nil
}

func setString(params url.Values, key string, v *string) {
	if v != nil {
		params.Set(key, *v)
	}
}

func setInt(params url.Values, key string, v *int) {
	if v != nil {
		params.Set(key, strconv.Itoa(*v))
	}
}

func setPage(params url.Values, limit *int, after, before *string) {
	setInt(params, OptLimit, limit)
	setString(params, OptAfter, after)
	setString(params, OptBefore, before)
}
