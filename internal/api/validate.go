package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Priorities accepted by the documents API.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// MaxPageSize is the largest limit list endpoints accept.
const MaxPageSize = 100

const dateLayout = "2006-01-02"

// Credentials is the request body for /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the credentials before they are sent.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
}

// Registration is the request body for /auth/register.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate checks the registration form before it is sent.
func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
	)
}

// Validate checks a password change request.
func (p PasswordChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 128),
			validation.NotIn(p.CurrentPassword).Error("must differ from the current password")),
	)
}

// DocumentFilter are the query parameters of GET /documents.
// Empty strings and nil pointers are not sent.
type DocumentFilter struct {
	Page           int
	Limit          int
	Status         string
	Type           string
	Priority       string
	Search         string
	CounterpartyID string
	DateFrom       string
	DateTo         string
	IsFavorite     *bool
	IsArchived     *bool
	IsDeleted      *bool
	SortBy         string
	SortOrder      string
}

// PageNumber returns the requested page, at least 1.
func (f DocumentFilter) PageNumber() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// WithPage returns a copy of f requesting page.
func (f DocumentFilter) WithPage(page int) DocumentFilter {
	f.Page = page
	return f
}

// Query returns f as query parameters.
func (f DocumentFilter) Query() map[string]any {
	q := map[string]any{
		"page":            f.PageNumber(),
		"limit":           nil,
		"status":          optional(f.Status),
		"type":            optional(f.Type),
		"priority":        optional(f.Priority),
		"search":          optional(f.Search),
		"counterparty_id": optional(f.CounterpartyID),
		"date_from":       optional(f.DateFrom),
		"date_to":         optional(f.DateTo),
		"is_favorite":     f.IsFavorite,
		"is_archived":     f.IsArchived,
		"is_deleted":      f.IsDeleted,
		"sort_by":         optional(f.SortBy),
		"sort_order":      optional(f.SortOrder),
	}
	if f.Limit > 0 {
		q["limit"] = f.Limit
	}
	return q
}

// Validate checks the filter against what the API accepts.
func (f DocumentFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Page, validation.Min(0)),
		validation.Field(&f.Limit, validation.Min(0), validation.Max(MaxPageSize)),
		validation.Field(&f.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
		validation.Field(&f.DateFrom, validation.Date(dateLayout)),
		validation.Field(&f.DateTo, validation.Date(dateLayout)),
		validation.Field(&f.SortOrder, validation.In("asc", "desc")),
	)
}

// CounterpartyFilter are the query parameters of GET /counterparties.
type CounterpartyFilter struct {
	Page          int
	Limit         int
	Search        string
	MinTrustScore *int
}

// PageNumber returns the requested page, at least 1.
func (f CounterpartyFilter) PageNumber() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// WithPage returns a copy of f requesting page.
func (f CounterpartyFilter) WithPage(page int) CounterpartyFilter {
	f.Page = page
	return f
}

// Query returns f as query parameters.
func (f CounterpartyFilter) Query() map[string]any {
	q := map[string]any{
		"page":            f.PageNumber(),
		"search":          optional(f.Search),
		"min_trust_score": f.MinTrustScore,
	}
	if f.Limit > 0 {
		q["limit"] = f.Limit
	}
	return q
}

// Validate checks the filter against what the API accepts.
func (f CounterpartyFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Limit, validation.Min(0), validation.Max(MaxPageSize)),
		validation.Field(&f.MinTrustScore, validation.Min(0), validation.Max(100)),
	)
}

// Validate checks a counterparty create request.
func (r CounterpartyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.INN, validation.Required, is.Digit, validation.Length(10, 12)),
		validation.Field(&r.Email, is.EmailFormat),
	)
}
