package shared

// Authorizer decides who may run moderated actions (start, reset, kick,
// clean). Keeping the admin name here, instead of inline in the services,
// means the privilege source can change without touching the state machine.
type Authorizer struct {
	adminName string
}

func NewAuthorizer(adminName string) Authorizer {
	if adminName == "" {
		adminName = DefaultAdminName
	}
	return Authorizer{adminName: adminName}
}

func (a Authorizer) IsAdmin(player string) bool {
	return player == a.adminName
}

// CanModerate allows the room leader or the reserved admin name.
func (a Authorizer) CanModerate(player string, isLeader bool) bool {
	return isLeader || a.IsAdmin(player)
}
