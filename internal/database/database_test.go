package database

import (
	"strings"
	"testing"
)

func TestTruncateQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"短查询原样保留", "SELECT 1", "SELECT 1"},
		{"恰好等于上限不截断", strings.Repeat("a", maxLoggedQueryLen), strings.Repeat("a", maxLoggedQueryLen)},
		{"超长查询被截断", strings.Repeat("b", maxLoggedQueryLen+50), strings.Repeat("b", maxLoggedQueryLen) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateQuery(tt.query); got != tt.want {
				t.Errorf("truncateQuery() 长度 %d, want 长度 %d", len(got), len(tt.want))
			}
		})
	}
}
