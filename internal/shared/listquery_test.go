package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListQuery(t *testing.T) {
	values := url.Values{
		"page":    {"3"},
		"search":  {"  Diop "},
		"statut":  {"en_attente"},
		"unknown": {"dropped"},
	}
	q := ParseListQuery(values, 15, "statut", "ville")
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 15, q.PerPage)
	assert.Equal(t, "Diop", q.Search)
	assert.Equal(t, "en_attente", q.Filter("statut"))
	assert.Equal(t, "", q.Filter("unknown"))
}

func TestParseListQueryDefaults(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"abc"}, "per_page": {"1000"}}, 0)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPerPage, q.PerPage)
}

func TestFilterSubmitResetsPage(t *testing.T) {
	values := url.Values{"page": {"4"}, "statut": {"livree"}, FilterSubmitField: {"1"}}
	q := ParseListQuery(values, 15, "statut")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "livree", q.Filter("statut"))
}

func TestWithFilterResetsPage(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"5"}, "statut": {"prete"}}, 15, "statut")

	changed := q.WithFilter("statut", "livree")
	assert.Equal(t, 1, changed.Page)
	assert.Equal(t, "livree", changed.Filter("statut"))
	assert.Equal(t, 5, q.Page, "original query is not mutated")
	assert.Equal(t, "prete", q.Filter("statut"))

	cleared := q.WithFilter("statut", "")
	assert.Equal(t, "", cleared.Filter("statut"))
	assert.Equal(t, 1, cleared.Page)

	searched := q.WithSearch("robe")
	assert.Equal(t, 1, searched.Page)
	assert.Equal(t, "robe", searched.Search)
}

func TestListQueryURLs(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"2"}, "search": {"wax"}, "categorie_id": {"4"}}, 15, "categorie_id", "actif")
	assert.Equal(t, "/produits?categorie_id=4&page=2&search=wax", q.URL("/produits"))
	assert.Equal(t, "/produits?categorie_id=4&page=3&search=wax", q.PageURL("/produits", 3))
	assert.Equal(t, "/produits?categorie_id=4&search=wax", q.PageURL("/produits", 1))
	assert.Equal(t, "/produits?actif=1&categorie_id=4&search=wax", q.FilterURL("/produits", "actif", "1"))
	assert.Equal(t, "/produits", ParseListQuery(url.Values{}, 15).URL("/produits"))
}

func TestListQueryAPI(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"2"}, "search": {"wax"}, "categorie_id": {"4"}}, 20, "categorie_id", "actif")
	got := q.API()
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "20", got.Get("per_page"))
	assert.Equal(t, "wax", got.Get("search"))
	assert.Equal(t, "4", got.Get("categorie_id"))
	assert.False(t, got.Has("actif"))
}

func TestOverflow(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"9"}}, 10)

	clamped, overflow := q.Overflow(NewPagination(9, 10, 25))
	assert.True(t, overflow)
	assert.Equal(t, 3, clamped.Page)

	_, overflow = q.WithPage(2).Overflow(NewPagination(2, 10, 25))
	assert.False(t, overflow)

	clamped, overflow = q.Overflow(NewPagination(9, 10, 0))
	assert.True(t, overflow)
	assert.Equal(t, 1, clamped.Page)
}

func TestListQueryKeepsCustomPageSize(t *testing.T) {
	q := ParseListQuery(url.Values{"page": {"9"}, "per_page": {"50"}, "search": {"wax"}}, 15)
	assert.Equal(t, "/clients?page=2&per_page=50&search=wax", q.PageURL("/clients", 2))

	clamped, overflow := q.Overflow(NewPagination(9, 50, 120))
	assert.True(t, overflow)
	assert.Equal(t, "/clients?page=3&per_page=50&search=wax", clamped.URL("/clients"))

	q = ParseListQuery(url.Values{"per_page": {"15"}}, 15)
	assert.Equal(t, "/clients", q.URL("/clients"))
}
