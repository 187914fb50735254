package pagination

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        Page
		offset      int
	}{
		{"defaults", "", "", Page{1, 10}, 0},
		{"explicit", "3", "20", Page{3, 20}, 40},
		{"negative page", "-2", "5", Page{1, 5}, 0},
		{"limit capped", "2", "500", Page{2, 50}, 50},
		{"garbage", "abc", "x", Page{1, 10}, 0},
		{"zero limit", "1", "0", Page{1, 10}, 0},
		{"page capped", strconv.Itoa(math.MaxInt), "50", Page{MaxPage, 50}, (MaxPage - 1) * 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.page, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, got.Offset())
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}
