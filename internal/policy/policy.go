// Package policy decides whether an actor may perform an action. Decisions
// are pure functions of the action, the actor and, for object-level checks,
// a small snapshot of the target.
package policy

type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleStaff
	RoleAdmin
	RoleSuperuser
)

var roleNames = map[Role]string{
	RoleAnonymous: "anonymous",
	RoleUser:      "user",
	RoleStaff:     "staff",
	RoleAdmin:     "admin",
	RoleSuperuser: "superadmin",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// Actor is the caller as seen by the resolver. The zero value is anonymous.
type Actor struct {
	ID        uint
	Active    bool
	Staff     bool
	Admin     bool
	Superuser bool
}

func Anonymous() Actor { return Actor{} }

func (a Actor) Authenticated() bool {
	return a.ID != 0 && a.Active
}

func (a Actor) Role() Role {
	switch {
	case !a.Authenticated():
		return RoleAnonymous
	case a.Superuser:
		return RoleSuperuser
	case a.Admin:
		return RoleAdmin
	case a.Staff:
		return RoleStaff
	default:
		return RoleUser
	}
}

type Action string

const (
	SweetList        Action = "sweet.list"
	SweetRetrieve    Action = "sweet.retrieve"
	SweetSearch      Action = "sweet.search"
	SweetCategories  Action = "sweet.categories"
	SweetFeatured    Action = "sweet.featured"
	StatsRead        Action = "stats.read"
	SweetLowStock    Action = "sweet.low_stock"
	SweetOutOfStock  Action = "sweet.out_of_stock"
	SweetMovements   Action = "sweet.movements"
	InventoryFeed    Action = "inventory.feed"
	SweetPurchase    Action = "sweet.purchase"
	SweetCreate      Action = "sweet.create"
	SweetUpdate      Action = "sweet.update"
	SweetUpdatePrice Action = "sweet.update_price"
	SweetDelete      Action = "sweet.delete"
	SweetRestock     Action = "sweet.restock"
	SweetBulk        Action = "sweet.bulk"
	DashboardRead    Action = "dashboard.read"

	AccountRead           Action = "account.read"
	AccountUpdate         Action = "account.update"
	AccountChangePassword Action = "account.change_password"
	AccountList           Action = "account.list"
	AccountCreate         Action = "account.create"
	AccountStats          Action = "account.stats"
	AccountDelete         Action = "account.delete"
	AccountDeactivate     Action = "account.deactivate"
	AccountActivate       Action = "account.activate"
)

// minimum role per action; anything missing requires RoleAdmin.
var requirements = map[Action]Role{
	SweetList:       RoleUser,
	SweetRetrieve:   RoleUser,
	SweetSearch:     RoleUser,
	SweetCategories: RoleUser,
	SweetFeatured:   RoleUser,
	StatsRead:       RoleUser,
	SweetPurchase:   RoleUser,

	SweetLowStock:   RoleStaff,
	SweetOutOfStock: RoleStaff,
	SweetMovements:  RoleStaff,
	InventoryFeed:   RoleStaff,

	SweetCreate:      RoleAdmin,
	SweetUpdate:      RoleAdmin,
	SweetUpdatePrice: RoleAdmin,
	SweetDelete:      RoleAdmin,
	SweetRestock:     RoleAdmin,
	SweetBulk:        RoleAdmin,
	DashboardRead:    RoleAdmin,

	AccountRead:           RoleUser,
	AccountUpdate:         RoleUser,
	AccountChangePassword: RoleUser,
	AccountList:           RoleAdmin,
	AccountCreate:         RoleAdmin,
	AccountStats:          RoleAdmin,
	AccountDelete:         RoleAdmin,
	AccountDeactivate:     RoleAdmin,
	AccountActivate:       RoleAdmin,
}

// Actions lists every action with an explicit rule.
func Actions() []Action {
	out := make([]Action, 0, len(requirements))
	for a := range requirements {
		out = append(out, a)
	}
	return out
}

func Required(action Action) Role {
	if r, ok := requirements[action]; ok {
		return r
	}
	return RoleAdmin
}

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "authentication required"
	ReasonForbidden       Reason = "insufficient role"
	ReasonUnavailable     Reason = "sweet is out of stock"
	ReasonInStock         Reason = "sweet still has stock"
	ReasonSelf            Reason = "action not allowed on own account"
	ReasonPrivilegeFields Reason = "privilege fields cannot be changed on own account"
	ReasonNotOwner        Reason = "not your account"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

func Resolve(action Action, actor Actor) Decision {
	role := actor.Role()
	if role >= Required(action) {
		return allow()
	}
	if role == RoleAnonymous {
		return deny(ReasonUnauthenticated)
	}
	return deny(ReasonForbidden)
}

// Target is an object snapshot for ResolveObject.
type Target interface {
	target()
}

type SweetTarget struct {
	Quantity int
}

type AccountTarget struct {
	ID uint
	// PrivilegeChange is set when the request touches is_admin, is_staff or is_superuser.
	PrivilegeChange bool
}

func (SweetTarget) target()   {}
func (AccountTarget) target() {}

func ResolveObject(action Action, actor Actor, target Target) Decision {
	switch t := target.(type) {
	case SweetTarget:
		return resolveSweet(action, actor, t)
	case AccountTarget:
		return resolveAccount(action, actor, t)
	default:
		return Resolve(action, actor)
	}
}

func resolveSweet(action Action, actor Actor, t SweetTarget) Decision {
	d := Resolve(action, actor)
	if !d.Allowed {
		return d
	}
	switch action {
	case SweetPurchase:
		if t.Quantity <= 0 {
			return deny(ReasonUnavailable)
		}
	case SweetDelete:
		if t.Quantity != 0 {
			return deny(ReasonInStock)
		}
	}
	return d
}

func resolveAccount(action Action, actor Actor, t AccountTarget) Decision {
	if !actor.Authenticated() {
		return deny(ReasonUnauthenticated)
	}
	self := actor.ID == t.ID
	admin := actor.Role() >= RoleAdmin

	switch action {
	case AccountRead, AccountChangePassword:
		if self || admin {
			return allow()
		}
		return deny(ReasonNotOwner)
	case AccountUpdate:
		if self {
			if t.PrivilegeChange {
				return deny(ReasonPrivilegeFields)
			}
			return allow()
		}
		if admin {
			return allow()
		}
		return deny(ReasonNotOwner)
	case AccountDelete, AccountDeactivate, AccountActivate:
		if !admin {
			return deny(ReasonForbidden)
		}
		if self {
			return deny(ReasonSelf)
		}
		return allow()
	default:
		return Resolve(action, actor)
	}
}
