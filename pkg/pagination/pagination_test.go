package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

func TestParams_Normalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pagination.Params{Page: 1, Limit: 10}, pagination.Params{}.Normalize())
	assert.Equal(t, pagination.Params{Page: 3, Limit: 50}, pagination.Params{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Skip())
}

func TestParams_Window(t *testing.T) {
	t.Parallel()

	start, end := pagination.Params{Page: 2, Limit: 2}.Window(5)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = pagination.Params{Page: 9, Limit: 2}.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestNewResult(t *testing.T) {
	t.Parallel()

	r := pagination.NewResult[int](nil, 21, pagination.Params{Page: 1, Limit: 10})
	assert.NotNil(t, r.Items)
	assert.Equal(t, 3, r.TotalPages)

	m := pagination.Map(pagination.NewResult([]int{1, 2}, 2, pagination.Params{}), func(i int) string {
		return string(rune('a' + i))
	})
	assert.Equal(t, []string{"b", "c"}, m.Items)
	assert.EqualValues(t, 2, m.Total)
}
