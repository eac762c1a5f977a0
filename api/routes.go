package api

// Backend route constants
const (
	// Auth
	RouteAuthLogin  = "/auth/login"
	RouteAuthMe     = "/auth/me"
	RouteAuthLogout = "/auth/logout"

	// Business endpoints, all tenant scoped and authorised by the same bearer token
	RouteProducts       = "/product"
	RouteDeliveries     = "/delivery"
	RouteOrders         = "/order"
	RouteCustomers      = "/customer"
	RouteTenants        = "/tenant"
	RouteUsers          = "/users"
	RouteSuppliers      = "/supplier"
	RouteDeliveryPeople = "/deliveryPerson"
	RouteDirectSales    = "/directeSale"
	RouteCreditPayments = "/creditPayment"
)
