package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Meta is the pagination metadata of a list response.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// UnmarshalJSON accepts the bare Laravel paginator, the API resource collection
// shape (data + meta) and the {items, meta} shape.
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		p.Items = items
		p.Meta = Meta{CurrentPage: 1, LastPage: 1, PerPage: len(items), Total: len(items)}
		return nil
	}

	var raw struct {
		Data  []T   `json:"data"`
		Items []T   `json:"items"`
		Meta  *Meta `json:"meta"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("api: decode page: %w", err)
	}
	var inline Meta
	if err := json.Unmarshal(trimmed, &inline); err != nil {
		return fmt.Errorf("api: decode page meta: %w", err)
	}

	p.Items = raw.Data
	if p.Items == nil {
		p.Items = raw.Items
	}
	if raw.Meta != nil {
		p.Meta = *raw.Meta
	} else {
		p.Meta = inline
	}
	if p.Meta.CurrentPage == 0 {
		p.Meta.CurrentPage = 1
	}
	if p.Meta.LastPage == 0 {
		p.Meta.LastPage = 1
	}
	if p.Meta.Total == 0 && len(p.Items) > 0 && raw.Meta == nil && inline.PerPage == 0 {
		p.Meta.Total = len(p.Items)
	}
	return nil
}

// PageQuery builds the query string sent for a paginated list.
func PageQuery(page, perPage int, filters map[string]string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	for k, v := range filters {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	return q
}
