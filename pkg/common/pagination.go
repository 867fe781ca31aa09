package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PageParams carries limit/offset pagination parsed from a request.
type PageParams struct {
	Limit  int
	Offset int
}

// ParsePageParams reads limit and offset query parameters, clamping
// them to sane bounds. Absent or malformed values fall back to defaults.
func ParsePageParams(r *http.Request) PageParams {
	p := PageParams{Limit: defaultPageLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Offset = v
		}
	}
	return p
}

// PageMeta describes the slice returned to the caller.
type PageMeta struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// SlicePage applies limit/offset to a total count and returns the
// bounds plus metadata. Start and end index into the full slice.
func SlicePage(total int, p PageParams) (start, end int, meta PageMeta) {
	start = p.Offset
	if start > total {
		start = total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	meta = PageMeta{
		Limit:   p.Limit,
		Offset:  p.Offset,
		Total:   total,
		HasMore: end < total,
	}
	return start, end, meta
}
