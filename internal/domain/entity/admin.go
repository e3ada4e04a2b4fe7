package entity

// Admin roles. Anything else is treated as concierge.
const (
	AdminRoleGod       = "God"
	AdminRoleAdmin     = "admin"
	AdminRoleConcierge = "concierge"
)

// AdminProfile is a console user and the properties they administer.
type AdminProfile struct {
	UID     string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	AdminOf []string `json:"adminOf"`
}

// EffectiveRole defaults an empty role to concierge.
func (p AdminProfile) EffectiveRole() string {
	if p.Role == "" {
		return AdminRoleConcierge
	}
	return p.Role
}

// CanManageContent gates slideshow and event editing.
func (p AdminProfile) CanManageContent() bool {
	r := p.EffectiveRole()
	return r == AdminRoleGod || r == AdminRoleAdmin
}
