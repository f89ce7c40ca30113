package shared

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
)

// FilterSubmitField is the name of the filter form's submit button. Its presence
// means the filters were just edited, so the page goes back to 1.
const FilterSubmitField = "filter"

// ListQuery is the state of a list screen: page, search term and filters.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	filters map[string]string
	keys    []string
	// defaultPerPage is the page size links omit.
	defaultPerPage int
}

// ParseListQuery reads a list query from URL values. Only filterKeys are kept.
func ParseListQuery(values url.Values, defaultPerPage int, filterKeys ...string) ListQuery {
	page, _ := strconv.Atoi(values.Get("page"))
	if page < 1 || values.Has(FilterSubmitField) {
		page = 1
	}
	if defaultPerPage < 1 {
		defaultPerPage = DefaultPerPage
	}
	perPage, _ := strconv.Atoi(values.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = defaultPerPage
	}
	q := ListQuery{
		Page:           page,
		PerPage:        perPage,
		Search:         strings.TrimSpace(values.Get("search")),
		filters:        make(map[string]string, len(filterKeys)),
		keys:           append([]string(nil), filterKeys...),
		defaultPerPage: defaultPerPage,
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			q.filters[key] = v
		}
	}
	return q
}

// Filter returns the value of a filter.
func (q ListQuery) Filter(key string) string {
	return q.filters[key]
}

// WithPage returns a copy positioned on page n.
func (q ListQuery) WithPage(n int) ListQuery {
	out := q.clone()
	if n < 1 {
		n = 1
	}
	out.Page = n
	return out
}

// WithFilter returns a copy with key set to value and the page reset to 1.
func (q ListQuery) WithFilter(key, value string) ListQuery {
	out := q.clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(out.filters, key)
	} else {
		if !out.hasKey(key) {
			out.keys = append(out.keys, key)
		}
		out.filters[key] = value
	}
	out.Page = 1
	return out
}

// WithSearch returns a copy with a new search term and the page reset to 1.
func (q ListQuery) WithSearch(term string) ListQuery {
	out := q.clone()
	out.Search = strings.TrimSpace(term)
	out.Page = 1
	return out
}

// Values encodes the query for links back to the list screen.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 && q.PerPage != q.defaultPerPage {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for _, key := range q.keys {
		if val := q.filters[key]; val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// URL renders the list link rooted at base.
func (q ListQuery) URL(base string) string {
	encoded := q.Values().Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}

// PageURL renders the link to page n keeping search and filters.
func (q ListQuery) PageURL(base string, n int) string {
	return q.WithPage(n).URL(base)
}

// FilterURL renders the link that sets one filter, back on page 1.
func (q ListQuery) FilterURL(base, key, value string) string {
	return q.WithFilter(key, value).URL(base)
}

// API encodes the query for the backend list endpoint.
func (q ListQuery) API() url.Values {
	filters := make(map[string]string, len(q.filters)+1)
	for k, v := range q.filters {
		filters[k] = v
	}
	if q.Search != "" {
		filters["search"] = q.Search
	}
	return api.PageQuery(q.Page, q.PerPage, filters)
}

// Overflow reports the clamped query when the requested page is past the last
// page the backend reported.
func (q ListQuery) Overflow(p Pagination) (ListQuery, bool) {
	clamped := p.Clamp(q.Page)
	if clamped == q.Page {
		return q, false
	}
	return q.WithPage(clamped), true
}

func (q ListQuery) hasKey(key string) bool {
	for _, k := range q.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (q ListQuery) clone() ListQuery {
	out := q
	out.filters = make(map[string]string, len(q.filters))
	for k, v := range q.filters {
		out.filters[k] = v
	}
	out.keys = append([]string(nil), q.keys...)
	return out
}
