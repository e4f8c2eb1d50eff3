package suggest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/wtree/pkg/suggest"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
		{"héllo", "hello", 1},
		{"eng/platform", "eng/platfrom", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, suggest.Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, suggest.Distance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()

	ids := []string{"eng", "eng/platform", "eng/web", "sales", "ops"}

	assert.Equal(t, []string{"eng/platform"}, suggest.Closest("eng/platfrom", ids, 3))
	assert.Equal(t, []string{"eng"}, suggest.Closest("en", ids, 3))
	assert.Equal(t, []string{"eng/web"}, suggest.Closest("eng/we", ids, 3))
	assert.Equal(t, []string{"ab", "ac"}, suggest.Closest("aa", []string{"ad", "ac", "ab"}, 2))
	assert.Empty(t, suggest.Closest("marketing", ids, 3))
	assert.Nil(t, suggest.Closest("eng", ids, 0))
}
