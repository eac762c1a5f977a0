package tenants

import (
	"net/url"
	"strings"
)

// TenantQueryParam is the query parameter the backend scopes business data by
const TenantQueryParam = "tenantId"

// Tenant is the organisation that owns a user and all of the business data they see
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Scope returns path with the tenant query parameter set, keeping any
// existing query. An empty tenant leaves the path untouched.
func (t Tenant) Scope(path string) string {
	if t.ID == "" {
		return path
	}
	base, rawQuery, _ := strings.Cut(path, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	q.Set(TenantQueryParam, t.ID)
	return base + "?" + q.Encode()
}

func (t Tenant) String() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name + " (" + t.ID + ")"
}
