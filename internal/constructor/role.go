package constructor

// Role names the construction phase an argument list feeds.
type Role int

const (
	// NewArguments are passed to the function creating the native storage.
	NewArguments Role = iota
	// BaseArguments are passed to the base class constructor.
	BaseArguments
	// InitializeArguments are passed to initialize after construction.
	InitializeArguments

	roleCount
)

// String returns the surface name of the role.
func (r Role) String() string {
	switch r {
	case NewArguments:
		return "NewArguments"
	case BaseArguments:
		return "BaseArguments"
	case InitializeArguments:
		return "InitializeArguments"
	}
	return "Role(?)"
}

// Roles returns the roles in construction order.
func Roles() []Role {
	return []Role{NewArguments, BaseArguments, InitializeArguments}
}

// LookupRole maps a binding name to its role. The mapping is exact and
// case sensitive.
func LookupRole(name string) (Role, bool) {
	switch name {
	case "NewArguments":
		return NewArguments, true
	case "BaseArguments":
		return BaseArguments, true
	case "InitializeArguments":
		return InitializeArguments, true
	}
	return 0, false
}
