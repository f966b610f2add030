package model

import "net/url"

// FilterCriteria parameterizes slot listings.  Every field is optional
// and the values are forwarded to the scheduling service verbatim; the
// service owns the filtering semantics.
type FilterCriteria struct {
	Date   string     `query:"date"`
	Status SlotStatus `query:"status"`
	UserID string     `query:"userId"`
}

// IsZero reports whether no constraint is set.
func (f FilterCriteria) IsZero() bool {
	return f.Date == "" && f.Status == "" && f.UserID == ""
}

// Query encodes the non-empty constraints as URL query parameters.
func (f FilterCriteria) Query() url.Values {
	q := url.Values{}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}
	return q
}
