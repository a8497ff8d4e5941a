package pagination

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"two", 1},
		{"0", 1},
		{"-3", 1},
		{" 4 ", 4},
		{strconv.Itoa(MaxPage), MaxPage},
		{strconv.Itoa(MaxPage + 1), MaxPage},
		{"9223372036854775807", MaxPage},
		{"99999999999999999999999", MaxPage},
		{"-99999999999999999999999", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePage(tt.in), "page %q", tt.in)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 24))
	assert.Equal(t, 1, TotalPages(24, 24))
	assert.Equal(t, 2, TotalPages(25, 24))
	assert.Equal(t, 5, TotalPages(100, 20))
	assert.Equal(t, 1, TotalPages(10, 0))
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		total    int64
		skip     int64
		ok       bool
	}{
		{"first page", 1, 24, 30, 0, true},
		{"last page", 2, 24, 30, 24, true},
		{"past the end", 3, 24, 30, 0, false},
		{"empty result", 1, 24, 0, 0, false},
		{"page below one", 0, 24, 30, 0, true},
		{"huge page", math.MaxInt, 24, 30, 0, false},
		{"max page of a large result", MaxPage, 20, int64(MaxPage) * 20, int64(MaxPage-1) * 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, ok := Skip(tt.page, tt.pageSize, tt.total)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.skip, skip)
			assert.GreaterOrEqual(t, skip, int64(0))
		})
	}
}
