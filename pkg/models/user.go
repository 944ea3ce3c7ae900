package models

type Role string

const (
	RoleCashier Role = "CASHIER"
	RoleKitchen Role = "KITCHEN"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCashier, RoleKitchen, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a staff member identified by a PIN at the terminal. The PIN hash
// never leaves the auth store.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
