package memory

import (
	goAuthClient "github.com/MrEthical07/goAuthClient"
)

// DemoAccount is one seeded storefront account.
type DemoAccount struct {
	Name     string
	Email    string
	Password string
	Role     goAuthClient.Role
}

// DemoAccounts are the accounts NewDemo seeds, one per role.
var DemoAccounts = []DemoAccount{
	{Name: "Casey Customer", Email: "customer@example.com", Password: "customer123", Role: goAuthClient.RoleCustomer},
	{Name: "Sam Seller", Email: "seller@example.com", Password: "seller123", Role: goAuthClient.RoleSeller},
	{Name: "Alex Admin", Email: "admin@example.com", Password: "admin123", Role: goAuthClient.RoleAdmin},
}

// NewDemo returns a backend seeded with DemoAccounts.
func NewDemo(cfg Config) (*Service, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for _, a := range DemoAccounts {
		if _, err := s.AddUser(a.Name, a.Email, a.Password, a.Role); err != nil {
			return nil, err
		}
	}
	return s, nil
}
