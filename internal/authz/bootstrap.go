package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// 预置角色名称
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleOperations      = "operations"
	RoleSupport         = "support"
	RoleFinance         = "finance"
)

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleOperations,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/takeoffs", Action: "*"},
				{Object: "/admin/takeoffs/:id", Action: "*"},
				{Object: "/admin/promo-codes", Action: "*"},
				{Object: "/admin/promo-codes/:id", Action: "*"},
				{Object: "/admin/promo-codes/:id/reset-reserved", Action: "POST"},
				{Object: "/admin/upload", Action: "POST"},
			},
		},
		{
			Role:     RoleSupport,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/contact-messages/:id", Action: "PATCH"},
				{Object: "/admin/contact-messages/:id", Action: "DELETE"},
				{Object: "/admin/users/:id", Action: "PATCH"},
			},
		},
		{
			Role:     RoleFinance,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/reconciliations/:id/resolve", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return fmt.Errorf("builtin role %q: %w", seed.Role, err)
		}
		added, err := s.anchorRole(role)
		if err != nil {
			return err
		}
		changed = changed || added

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return fmt.Errorf("builtin role %q parent: %w", seed.Role, err)
			}
			linked, err := s.enforcer.AddNamedGroupingPolicy(groupingPolicy, role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			changed = changed || linked
		}

		for _, policy := range seed.Policies {
			granted, err := s.addPolicy(role, policy.Object, policy.Action)
			if err != nil {
				return fmt.Errorf("builtin role %q policy %s %s: %w", seed.Role, policy.Action, policy.Object, err)
			}
			changed = changed || granted
		}
	}

	if changed {
		return s.reload()
	}
	return nil
}
