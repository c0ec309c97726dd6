package model

import "time"

// Preferences are the search criteria accumulated over a conversation
type Preferences struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	Location    *string   `json:"location,omitempty" db:"location"`
	CheckIn     *string   `json:"check_in,omitempty" db:"check_in"`
	CheckOut    *string   `json:"check_out,omitempty" db:"check_out"`
	Guests      *int      `json:"guests,omitempty" db:"guests"`
	BudgetMax   *float64  `json:"budget_max,omitempty" db:"budget_max"`
	Preferences JSONArray `json:"preferences" db:"preferences"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Merge returns a copy of p refined by the fields the intent carries.
// Absent intent fields keep the stored value; p itself is left untouched.
func (p Preferences) Merge(in IntentRecord) Preferences {
	out := p
	if in.Location != nil {
		out.Location = copyPtr(in.Location)
	}
	if in.CheckIn != nil {
		out.CheckIn = copyPtr(in.CheckIn)
	}
	if in.CheckOut != nil {
		out.CheckOut = copyPtr(in.CheckOut)
	}
	if in.Guests != nil {
		out.Guests = copyPtr(in.Guests)
	}
	if in.BudgetMax != nil {
		out.BudgetMax = copyPtr(in.BudgetMax)
	}
	if len(in.Preferences) > 0 {
		out.Preferences = append(JSONArray(nil), in.Preferences...)
	} else if p.Preferences != nil {
		out.Preferences = append(JSONArray(nil), p.Preferences...)
	}
	return out
}

// ReadyForSearch reports whether a location and both dates are known
func (p Preferences) ReadyForSearch() bool {
	return nonEmpty(p.Location) && nonEmpty(p.CheckIn) && nonEmpty(p.CheckOut)
}

// Query builds the provider query, using defaultGuests when the user never said
func (p Preferences) Query(defaultGuests int) SearchQuery {
	q := SearchQuery{
		Guests:    defaultGuests,
		MaxPrice:  p.BudgetMax,
		Amenities: []string(p.Preferences),
	}
	if p.Location != nil {
		q.Location = *p.Location
	}
	if p.CheckIn != nil {
		q.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		q.CheckOut = *p.CheckOut
	}
	if p.Guests != nil && *p.Guests > 0 {
		q.Guests = *p.Guests
	}
	return q
}

func copyPtr[T any](v *T) *T {
	c := *v
	return &c
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
