package model

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleStaff         Role = "staff"
	RoleDriver        Role = "driver"
	RoleInspector     Role = "inspector"
	RolePlatformAdmin Role = "platform_admin"
)

// Principal is the authenticated caller. Token is forwarded to the fleet API.
type Principal struct {
	UserID    string
	Role      Role
	CompanyID string
	Token     string
}

func (p Principal) IsPlatformAdmin() bool { return p.Role == RolePlatformAdmin }
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
func (p Principal) IsStaff() bool { return p.Role == RoleStaff }

// CanViewReports reports whether the principal may open report dashboards.
func (p Principal) CanViewReports() bool {
	return p.IsPlatformAdmin() || p.IsAdmin() || p.IsStaff()
}

// Scope identifies whose data a cached report belongs to. Two callers never
// share a scope, even inside one company.
func (p Principal) Scope() string {
	if p.IsPlatformAdmin() {
		return "platform:" + p.UserID
	}
	if p.CompanyID == "" {
		return "user:" + p.UserID + ":" + string(p.Role)
	}
	return "company:" + p.CompanyID + ":" + string(p.Role) + ":" + p.UserID
}
