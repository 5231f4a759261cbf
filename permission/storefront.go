package permission

// Storefront permissions.
const (
	OrdersRead       = "orders:read"
	OrdersCreate     = "orders:create"
	ProfileWrite     = "profile:write"
	ReviewsWrite     = "reviews:write"
	ProductsWrite    = "products:write"
	SellerDashboard  = "seller:dashboard"
	UsersManage      = "users:manage"
	PromotionsManage = "promotions:manage"
	AdminDashboard   = "admin:dashboard"
)

// Storefront returns the frozen role set for the customer, seller and admin
// roles. Sellers hold every customer permission, admins every seller one.
func Storefront() *RoleSet {
	reg, err := NewRegistry(
		OrdersRead, OrdersCreate, ProfileWrite, ReviewsWrite,
		ProductsWrite, SellerDashboard,
		UsersManage, PromotionsManage, AdminDashboard,
	)
	if err != nil {
		panic(err)
	}
	reg.Freeze()

	customer := []string{OrdersRead, OrdersCreate, ProfileWrite, ReviewsWrite}
	seller := append(append([]string{}, customer...), ProductsWrite, SellerDashboard)
	admin := append(append([]string{}, seller...), UsersManage, PromotionsManage, AdminDashboard)

	rs := NewRoleSet(reg)
	for role, perms := range map[string][]string{
		"customer": customer,
		"seller":   seller,
		"admin":    admin,
	} {
		if err := rs.Define(role, perms...); err != nil {
			panic(err)
		}
	}
	rs.Freeze()
	return rs
}
