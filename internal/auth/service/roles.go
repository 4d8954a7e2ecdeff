package service

import "truetrace/pkg/domain"

// RoleTable assigns supply chain roles to ledger accounts. Accounts absent
// from the table are Consumers.
type RoleTable struct {
	roles map[domain.AccountID]domain.Role
}

// NewRoleTable copies roles into a table. Entries with unknown roles are
// dropped; config.ParseRoleMap rejects them before this point.
func NewRoleTable(roles map[domain.AccountID]domain.Role) RoleTable {
	t := RoleTable{roles: make(map[domain.AccountID]domain.Role, len(roles))}
	for id, role := range roles {
		if role.IsValid() {
			t.roles[id] = role
		}
	}
	return t
}

// RoleOf returns the role for accountID.
func (t RoleTable) RoleOf(accountID domain.AccountID) domain.Role {
	if role, ok := t.roles[accountID]; ok {
		return role
	}
	return domain.RoleConsumer
}
