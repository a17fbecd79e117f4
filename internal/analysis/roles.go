// Package analysis maps dataset columns to business roles and derives
// headline metrics from them.
package analysis

import "strings"

// Role is a semantic meaning a column can carry.
type Role string

const (
	RoleRevenue        Role = "revenue"
	RoleMonthlyRevenue Role = "monthlyRevenue"
	RoleChurnStatus    Role = "churnStatus"
	RoleTenure         Role = "tenure"
	RoleCustomerID     Role = "customerId"
)

type roleRule struct {
	role     Role
	keywords []string
}

// roleRules is evaluated in order; each role binds the first schema column
// whose lowercased name contains one of its keywords.
var roleRules = []roleRule{
	{RoleRevenue, []string{"revenue", "sales", "total", "amount", "charges"}},
	{RoleMonthlyRevenue, []string{"monthly"}},
	{RoleChurnStatus, []string{"churn", "status", "active"}},
	{RoleTenure, []string{"tenure", "months", "years"}},
	{RoleCustomerID, []string{"customer", "client", "user"}},
}

// RoleMap binds roles to column names. Unbound roles are absent.
type RoleMap map[Role]string

// Column returns the column bound to r.
func (m RoleMap) Column(r Role) (string, bool) {
	c, ok := m[r]
	return c, ok
}

// Roles lists every known role in rule order.
func Roles() []Role {
	out := make([]Role, 0, len(roleRules))
	for _, r := range roleRules {
		out = append(out, r.role)
	}
	return out
}

// Keywords returns the match keywords of a role.
func Keywords(r Role) []string {
	for _, rule := range roleRules {
		if rule.role == r {
			return append([]string(nil), rule.keywords...)
		}
	}
	return nil
}

// Classify binds roles to schema columns. An empty schema yields an empty map.
func Classify(schema []string) RoleMap {
	out := RoleMap{}
	lower := make([]string, len(schema))
	for i, c := range schema {
		lower[i] = strings.ToLower(c)
	}
	for _, rule := range roleRules {
		for i, name := range lower {
			if containsAny(name, rule.keywords) {
				out[rule.role] = schema[i]
				break
			}
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
