// Package query turns listing parameters into a normalized, validated plan
// that repositories can apply without further checks.
package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/course-review-service/internal/utils"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// SQL comparison for each operator
var operators = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
	OpIn:  "IN",
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// EntityConfig is the listing configuration of one entity type
type EntityConfig struct {
	DefaultLimit     int
	MaxLimit         int
	DefaultSortField string
	DefaultDirection Direction
	// api field name -> column
	AllowedSortFields map[string]string
	FilterFields      map[string]string
}

var (
	CourseListing = EntityConfig{
		DefaultLimit:     5,
		MaxLimit:         100,
		DefaultSortField: "averageRating",
		DefaultDirection: Desc,
		AllowedSortFields: map[string]string{
			"createdAt":     "created_at",
			"name":          "name",
			"cost":          "cost",
			"averageRating": "average_rating",
		},
		FilterFields: map[string]string{
			"cost":   "cost",
			"rating": "average_rating",
		},
	}

	ReviewListing = EntityConfig{
		DefaultLimit:     20,
		MaxLimit:         100,
		DefaultSortField: "createdAt",
		DefaultDirection: Desc,
		AllowedSortFields: map[string]string{
			"createdAt": "created_at",
			"rating":    "rating",
		},
		FilterFields: map[string]string{
			"rating": "rating",
		},
	}
)

// Params holds raw listing input as received from the transport
type Params struct {
	Name      string
	Ranges    map[string]map[string]string // field -> op -> raw value
	SortBy    string
	Direction string
	Page      string
	Limit     string
}

// RangeFilter is one validated comparison on a numeric column
type RangeFilter struct {
	Field  string
	Column string
	Op     Op
	Values []float64
}

// Clause renders the filter as a parameterized SQL condition
func (f RangeFilter) Clause() (string, []interface{}) {
	if f.Op == OpIn {
		return fmt.Sprintf("%s IN ?", f.Column), []interface{}{f.Values}
	}
	return fmt.Sprintf("%s %s ?", f.Column, operators[f.Op]), []interface{}{f.Values[0]}
}

type Sort struct {
	Field     string
	Column    string
	Direction Direction
}

// OrderClause renders ORDER BY with nulls last and a stable tie-break
func (s Sort) OrderClause() string {
	dir := "DESC"
	if s.Direction == Asc {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, id ASC", s.Column, dir)
}

type Plan struct {
	Keywords []string
	Filters  []RangeFilter
	Sort     Sort
	Page     int
	Limit    int
}

// Skip is the number of records before the current page
func (p *Plan) Skip() int {
	return (p.Page - 1) * p.Limit
}

// MaxPage returns the last page holding records, 0 when there are none
func (p *Plan) MaxPage(total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Limit)))
}

// Clamp moves an overshooting page back to the last page with records
func (p *Plan) Clamp(total int64) {
	if maxPage := p.MaxPage(total); maxPage > 0 && p.Page > maxPage {
		p.Page = maxPage
	}
}

// Build validates params against cfg and returns a plan. Only malformed
// range filters are rejected; bad sort or paging input falls back to defaults.
func Build(cfg EntityConfig, params Params) (*Plan, error) {
	plan := &Plan{
		Keywords: utils.Tokenize(params.Name),
		Page:     parsePositive(params.Page, 1),
		Limit:    parsePositive(params.Limit, cfg.DefaultLimit),
	}
	if cfg.MaxLimit > 0 && plan.Limit > cfg.MaxLimit {
		plan.Limit = cfg.MaxLimit
	}

	sortField := params.SortBy
	column, ok := cfg.AllowedSortFields[sortField]
	if !ok {
		sortField = cfg.DefaultSortField
		column = cfg.AllowedSortFields[sortField]
	}
	direction := cfg.DefaultDirection
	switch Direction(strings.ToLower(strings.TrimSpace(params.Direction))) {
	case Asc:
		direction = Asc
	case Desc:
		direction = Desc
	}
	plan.Sort = Sort{Field: sortField, Column: column, Direction: direction}

	filters, err := buildFilters(cfg, params.Ranges)
	if err != nil {
		return nil, err
	}
	plan.Filters = filters

	return plan, nil
}

func buildFilters(cfg EntityConfig, ranges map[string]map[string]string) ([]RangeFilter, error) {
	// deterministic order keeps generated SQL stable
	fields := make([]string, 0, len(ranges))
	for field := range ranges {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var filters []RangeFilter
	for _, field := range fields {
		ops := ranges[field]
		if len(ops) == 0 {
			continue
		}
		column, ok := cfg.FilterFields[field]
		if !ok {
			return nil, &FilterError{Field: field, Message: "is not a filterable field"}
		}

		opNames := make([]string, 0, len(ops))
		for op := range ops {
			opNames = append(opNames, op)
		}
		sort.Strings(opNames)

		for _, rawOp := range opNames {
			op := Op(strings.ToLower(rawOp))
			if _, ok := operators[op]; !ok {
				return nil, &FilterError{Field: field, Message: fmt.Sprintf("unsupported operator %q", rawOp)}
			}
			values, err := parseValues(op, ops[rawOp])
			if err != nil {
				return nil, &FilterError{Field: field, Message: err.Error()}
			}
			filters = append(filters, RangeFilter{Field: field, Column: column, Op: op, Values: values})
		}
	}
	return filters, nil
}

func parseValues(op Op, raw string) ([]float64, error) {
	parts := []string{raw}
	if op == OpIn {
		parts = strings.Split(raw, ",")
	}

	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("value %q is not a number", part)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("a value is required")
	}
	if op != OpIn && len(values) > 1 {
		return nil, fmt.Errorf("operator %s takes a single value", op)
	}
	return values, nil
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// FilterError reports a range filter that failed the allow-list
type FilterError struct {
	Field   string
	Message string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Message)
}
