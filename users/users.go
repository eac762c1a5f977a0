package users

import (
	"strings"

	"github.com/jrsteele09/depot-client/tenants"
)

// RoleType represents the role a user holds inside their tenant
type RoleType string

const (
	RoleAdmin          RoleType = "ADMIN"           // Full control of the tenant, including users and settings
	RoleManager        RoleType = "MANAGER"         // Runs the depot: stock, suppliers, deliveries, sales
	RoleDeliveryPerson RoleType = "DELIVERY_PERSON" // Sees and updates their own deliveries only
)

// Section is a navigation area of the application
type Section string

const (
	SectionDashboard      Section = "dashboard"
	SectionProducts       Section = "products"
	SectionStock          Section = "stock"
	SectionSuppliers      Section = "suppliers"
	SectionDeliveries     Section = "deliveries"
	SectionDeliveryPeople Section = "delivery-persons"
	SectionDirectSales    Section = "direct-sales"
	SectionCreditPayments Section = "credit-payments"
	SectionCustomers      Section = "customers"
	SectionUsers          Section = "users"
	SectionTenant         Section = "tenant"
)

var roleSections = map[RoleType][]Section{
	RoleAdmin: {
		SectionDashboard, SectionProducts, SectionStock, SectionSuppliers, SectionDeliveries,
		SectionDeliveryPeople, SectionDirectSales, SectionCreditPayments, SectionCustomers,
		SectionUsers, SectionTenant,
	},
	RoleManager: {
		SectionDashboard, SectionProducts, SectionStock, SectionSuppliers, SectionDeliveries,
		SectionDeliveryPeople, SectionDirectSales, SectionCreditPayments, SectionCustomers,
	},
	RoleDeliveryPerson: {
		SectionDeliveries,
	},
}

// ParseRole normalises a role string as sent by the backend. Unknown values
// return false.
func ParseRole(s string) (RoleType, bool) {
	r := RoleType(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r RoleType) Valid() bool {
	_, ok := roleSections[r]
	return ok
}

// Profile is the "who am I" view of the logged in user, as returned by /auth/me
type Profile struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone,omitempty"`
	TenantID   string   `json:"tenantId"`
	TenantName string   `json:"tenantName"`
	Role       RoleType `json:"role"`
}

// Tenant returns the organisation every business request of this user is scoped to
func (p *Profile) Tenant() tenants.Tenant {
	return tenants.Tenant{ID: p.TenantID, Name: p.TenantName}
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManageInventory reports whether the user may mutate products, stock and suppliers
func (p *Profile) CanManageInventory() bool {
	return p.Role == RoleAdmin || p.Role == RoleManager
}

// CanAccess reports whether the section is exposed to the user's role
func (p *Profile) CanAccess(section Section) bool {
	for _, s := range roleSections[p.Role] {
		if s == section {
			return true
		}
	}
	return false
}

// Sections returns the navigation sections visible to the user, in menu order
func (p *Profile) Sections() []Section {
	sections := roleSections[p.Role]
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// Clone returns a copy safe to hand to readers outside the session controller
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
