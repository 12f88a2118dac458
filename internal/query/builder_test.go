package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildDefaults(t *testing.T) {
	tests := []struct {
		name      string
		cfg       EntityConfig
		wantLimit int
		wantSort  string
		wantCol   string
	}{
		{name: "courses", cfg: CourseListing, wantLimit: 5, wantSort: "averageRating", wantCol: "average_rating"},
		{name: "reviews", cfg: ReviewListing, wantLimit: 20, wantSort: "createdAt", wantCol: "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(tt.cfg, Params{})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if plan.Page != 1 || plan.Limit != tt.wantLimit || plan.Skip() != 0 {
				t.Errorf("page=%d limit=%d skip=%d", plan.Page, plan.Limit, plan.Skip())
			}
			if plan.Sort.Field != tt.wantSort || plan.Sort.Column != tt.wantCol || plan.Sort.Direction != Desc {
				t.Errorf("sort = %+v", plan.Sort)
			}
			if len(plan.Keywords) != 0 || len(plan.Filters) != 0 {
				t.Errorf("expected no keywords or filters, got %v %v", plan.Keywords, plan.Filters)
			}
		})
	}
}

func TestBuildSortAndPaging(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		wantSort Sort
		wantPage int
		wantLim  int
		wantSkip int
	}{
		{
			name:     "explicit values",
			params:   Params{SortBy: "cost", Direction: "asc", Page: "3", Limit: "10"},
			wantSort: Sort{Field: "cost", Column: "cost", Direction: Asc},
			wantPage: 3, wantLim: 10, wantSkip: 20,
		},
		{
			name:     "unknown sort field falls back",
			params:   Params{SortBy: "password", Direction: "sideways"},
			wantSort: Sort{Field: "averageRating", Column: "average_rating", Direction: Desc},
			wantPage: 1, wantLim: 5, wantSkip: 0,
		},
		{
			name:     "garbage paging falls back",
			params:   Params{Page: "-2", Limit: "abc"},
			wantSort: Sort{Field: "averageRating", Column: "average_rating", Direction: Desc},
			wantPage: 1, wantLim: 5, wantSkip: 0,
		},
		{
			name:     "limit capped",
			params:   Params{Limit: "5000", Page: "2"},
			wantSort: Sort{Field: "averageRating", Column: "average_rating", Direction: Desc},
			wantPage: 2, wantLim: 100, wantSkip: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Build(CourseListing, tt.params)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if plan.Sort != tt.wantSort {
				t.Errorf("Sort = %+v, want %+v", plan.Sort, tt.wantSort)
			}
			if plan.Page != tt.wantPage || plan.Limit != tt.wantLim || plan.Skip() != tt.wantSkip {
				t.Errorf("page=%d limit=%d skip=%d, want %d %d %d",
					plan.Page, plan.Limit, plan.Skip(), tt.wantPage, tt.wantLim, tt.wantSkip)
			}
		})
	}
}

func TestBuildFilters(t *testing.T) {
	plan, err := Build(CourseListing, Params{
		Name: "Physics  MECHANICS physics",
		Ranges: map[string]map[string]string{
			"cost":   {"gte": "10", "lt": "100"},
			"rating": {"in": "5, 7.5"},
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if want := []string{"physics", "mechanics"}; !reflect.DeepEqual(plan.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", plan.Keywords, want)
	}

	want := []RangeFilter{
		{Field: "cost", Column: "cost", Op: OpGte, Values: []float64{10}},
		{Field: "cost", Column: "cost", Op: OpLt, Values: []float64{100}},
		{Field: "rating", Column: "average_rating", Op: OpIn, Values: []float64{5, 7.5}},
	}
	if !reflect.DeepEqual(plan.Filters, want) {
		t.Errorf("Filters = %+v, want %+v", plan.Filters, want)
	}

	clause, args := plan.Filters[0].Clause()
	if clause != "cost >= ?" || args[0] != 10.0 {
		t.Errorf("Clause() = %q %v", clause, args)
	}
	clause, _ = plan.Filters[2].Clause()
	if clause != "average_rating IN ?" {
		t.Errorf("Clause() = %q", clause)
	}
}

func TestBuildRejectsBadFilters(t *testing.T) {
	tests := []struct {
		name   string
		ranges map[string]map[string]string
	}{
		{name: "unknown field", ranges: map[string]map[string]string{"user_id": {"eq": "1"}}},
		{name: "unknown operator", ranges: map[string]map[string]string{"cost": {"ne": "1"}}},
		{name: "operator injection", ranges: map[string]map[string]string{"cost": {"gt; DROP TABLE courses": "1"}}},
		{name: "non numeric", ranges: map[string]map[string]string{"cost": {"gt": "cheap"}}},
		{name: "empty value", ranges: map[string]map[string]string{"cost": {"lte": ""}}},
		{name: "list on scalar operator", ranges: map[string]map[string]string{"cost": {"eq": "1,2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(CourseListing, Params{Ranges: tt.ranges})
			var filterErr *FilterError
			if !errors.As(err, &filterErr) {
				t.Fatalf("Build() error = %v, want *FilterError", err)
			}
		})
	}
}

func TestPlanClamp(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		total    int64
		wantPage int
	}{
		{name: "overshoot clamps to last page", page: 99, total: 8, wantPage: 2},
		{name: "exact multiple", page: 7, total: 10, wantPage: 2},
		{name: "in range untouched", page: 1, total: 8, wantPage: 1},
		{name: "no records keeps page", page: 4, total: 0, wantPage: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &Plan{Page: tt.page, Limit: 5}
			plan.Clamp(tt.total)
			if plan.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", plan.Page, tt.wantPage)
			}
		})
	}
}

func TestSortOrderClause(t *testing.T) {
	s := Sort{Column: "average_rating", Direction: Desc}
	if got := s.OrderClause(); got != "average_rating DESC NULLS LAST, id ASC" {
		t.Errorf("OrderClause() = %q", got)
	}
	s = Sort{Column: "name", Direction: Asc}
	if got := s.OrderClause(); got != "name ASC NULLS LAST, id ASC" {
		t.Errorf("OrderClause() = %q", got)
	}
}
