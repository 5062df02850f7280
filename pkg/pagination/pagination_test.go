package pagination_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/filer/pkg/pagination"
	"github.com/JaimeStill/filer/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("defaults = %+v, want %+v", cfg, defaultConfig())
	}

	t.Setenv("TEST_PAGE_SIZE", "50")
	t.Setenv("TEST_MAX_PAGE", "200")

	cfg = pagination.Config{}
	env := &pagination.Env{DefaultPageSize: "TEST_PAGE_SIZE", MaxPageSize: "TEST_MAX_PAGE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
		t.Errorf("env overrides = %+v", cfg)
	}
}

func TestConfigFinalizeDefaultExceedsMax(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 150, MaxPageSize: 100}
	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("Finalize() error = %v, want cannot exceed", err)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := defaultConfig()
	cfg.Merge(&pagination.Config{MaxPageSize: 500})
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 500 {
		t.Errorf("Merge() = %+v", cfg)
	}
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		search   string
		sort     string
		wantPage int
		wantSize int
		wantSort []query.SortField
	}{
		{"defaults", 0, 0, "", "", 1, 20, nil},
		{"clamped size", 3, 1000, "", "", 3, 100, nil},
		{"sort parsed", 1, 10, "", "-started_at,reason", 1, 10, []query.SortField{
			{Field: "started_at", Descending: true},
			{Field: "reason"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.NewPageRequest(tt.page, tt.size, tt.search, tt.sort, defaultConfig())
			if req.Page != tt.wantPage || req.PageSize != tt.wantSize {
				t.Errorf("page = %d size = %d, want %d and %d", req.Page, req.PageSize, tt.wantPage, tt.wantSize)
			}
			if len(req.Sort) != len(tt.wantSort) {
				t.Fatalf("Sort = %v, want %v", req.Sort, tt.wantSort)
			}
			for i := range req.Sort {
				if req.Sort[i] != tt.wantSort[i] {
					t.Errorf("Sort[%d] = %v, want %v", i, req.Sort[i], tt.wantSort[i])
				}
			}
			if req.Search != nil {
				t.Errorf("Search = %q, want nil for empty input", *req.Search)
			}
		})
	}

	req := pagination.NewPageRequest(1, 10, "a.png", "", defaultConfig())
	if req.Search == nil || *req.Search != "a.png" {
		t.Errorf("Search = %v, want a.png", req.Search)
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("Offset() = %d, want 50", got)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		wantPages int
	}{
		{"exact", 40, 20, 2},
		{"remainder", 41, 20, 3},
		{"empty", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pagination.NewPageResult[string](nil, tt.total, 1, tt.size)
			if res.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", res.TotalPages, tt.wantPages)
			}
			if res.Data == nil {
				t.Error("Data should be an empty slice, not nil")
			}
		})
	}
}
