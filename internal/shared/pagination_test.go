package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

func TestNewPaginationClampsPage(t *testing.T) {
	p := NewPagination(9, 10, 42)
	assert.Equal(t, 5, p.TotalPages)
	assert.Equal(t, 5, p.Page)

	p = NewPagination(-3, 10, 42)
	assert.Equal(t, 1, p.Page)

	p = NewPagination(4, 0, 0)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
}

func TestPaginationNavigation(t *testing.T) {
	p := NewPagination(1, 15, 31)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 1, p.Prev())
	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 1, p.From())
	assert.Equal(t, 15, p.To())

	last := NewPagination(3, 15, 31)
	assert.False(t, last.HasNext())
	assert.Equal(t, 3, last.Next())
	assert.Equal(t, 31, last.From())
	assert.Equal(t, 31, last.To())

	empty := NewPagination(1, 15, 0)
	assert.Equal(t, 0, empty.From())
	assert.Equal(t, 0, empty.To())
}

func TestPaginationPagesWindow(t *testing.T) {
	assert.Equal(t, []int{1}, NewPagination(1, 10, 5).Pages(2))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, NewPagination(1, 10, 100).Pages(2))
	assert.Equal(t, []int{4, 5, 6, 7, 8}, NewPagination(6, 10, 100).Pages(2))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, NewPagination(10, 10, 100).Pages(2))
	assert.Equal(t, []int{1, 2, 3}, NewPagination(2, 10, 30).Pages(2))
}

func TestPaginationFromMeta(t *testing.T) {
	p := PaginationFromMeta(api.Meta{CurrentPage: 7, LastPage: 4, PerPage: 20, Total: 70})
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 4, p.Page)

	empty := PaginationFromMeta(api.Meta{CurrentPage: 2, LastPage: 1, PerPage: 15})
	assert.Equal(t, 1, empty.Page)
}
