package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(3, 10, 95)
	assert.Equal(t, 10, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(10, 10, 95)
	assert.False(t, p.HasNext)
}

func TestParsePageQuery(t *testing.T) {
	q := ParsePageQuery("", "")
	assert.Equal(t, PageQuery{Page: 1, Limit: 10}, q)
	assert.Equal(t, 0, q.Offset())

	q = ParsePageQuery("3", "500")
	assert.Equal(t, PageQuery{Page: 3, Limit: 100}, q)
	assert.Equal(t, 200, q.Offset())

	assert.Equal(t, PageQuery{Page: 1, Limit: 10}, ParsePageQuery("-2", "abc"))
}
