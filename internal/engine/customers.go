package engine

import (
	"strings"
	"time"

	"crm-service/internal/models"
)

// CustomerFilters is the enumerated filter table for customers.
var CustomerFilters = Registry[models.Customer]{
	"name":             stringContains(customerName),
	"name_exact":       stringExact(customerName),
	"name_startswith":  stringPrefix(customerName),
	"email":            stringContains(customerEmail),
	"phone":            stringExact(customerPhone),
	"phone_contains":   stringContains(customerPhone),
	"created_at_gte":   timeGTE(customerCreatedAt),
	"created_at_lte":   timeLTE(customerCreatedAt),
	"created_at_range": timeRange(customerCreatedAt),
	"phone_pattern":    phonePattern,
	"email_domain":     emailDomain,
	"has_phone":        hasPhone,
}

// CustomerOrdering: default order is name ascending.
var CustomerOrdering = NewOrdering(
	func(a, b models.Customer) int { return strings.Compare(a.Name, b.Name) },
	map[string]func(a, b models.Customer) int{
		"name":       func(a, b models.Customer) int { return strings.Compare(a.Name, b.Name) },
		"email":      func(a, b models.Customer) int { return strings.Compare(a.Email, b.Email) },
		"created_at": func(a, b models.Customer) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updated_at": func(a, b models.Customer) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
)

func customerName(c models.Customer) string         { return c.Name }
func customerEmail(c models.Customer) string        { return c.Email }
func customerPhone(c models.Customer) string        { return c.Phone }
func customerCreatedAt(c models.Customer) time.Time { return c.CreatedAt }

// countryCodes are the country prefixes accepted as a bare pattern.
var countryCodes = map[string]struct{}{
	"+44": {}, "+33": {}, "+49": {}, "+86": {}, "+91": {},
}

// phonePattern builds an OR of phone sub-clauses:
//
//   - a pattern starting with "+" matches as a literal prefix;
//   - "us"/"usa"/"united states" match the "+1" prefix;
//   - one of the known country codes matches as a literal prefix;
//   - anything else matches as a substring;
//   - an all-digit pattern additionally matches "+pattern" and bare-pattern
//     prefixes, unioned with whichever branch above applied.
//
// A blank pattern filters nothing.
func phonePattern(value any) Clause[models.Customer] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Customer]()
	}
	pattern := strings.TrimSpace(s)
	if pattern == "" {
		return Clause[models.Customer]{}
	}

	var subs []Predicate[models.Customer]
	if strings.HasPrefix(pattern, "+") {
		subs = append(subs, phonePrefix(pattern))
	} else if isUSAlias(pattern) {
		subs = append(subs, phonePrefix("+1"))
	} else if _, known := countryCodes[pattern]; known {
		subs = append(subs, phonePrefix(pattern))
	} else {
		subs = append(subs, func(_ *Eval, c models.Customer) bool {
			return strings.Contains(c.Phone, pattern)
		})
	}

	// A bare digit pattern like "1" should also find "+1..." numbers.
	if isDigits(pattern) {
		subs = append(subs, phonePrefix("+"+pattern), phonePrefix(pattern))
	}
	return Clause[models.Customer]{Pred: Or(subs...)}
}

func phonePrefix(prefix string) Predicate[models.Customer] {
	return func(_ *Eval, c models.Customer) bool {
		return strings.HasPrefix(c.Phone, prefix)
	}
}

func isUSAlias(pattern string) bool {
	switch strings.ToLower(pattern) {
	case "us", "usa", "united states":
		return true
	}
	return false
}

// emailDomain matches customers whose email ends with "@domain",
// case-insensitively. A leading "@" on the value is stripped.
func emailDomain(value any) Clause[models.Customer] {
	s, ok := toString(value)
	if !ok {
		return noneClause[models.Customer]()
	}
	domain := strings.ToLower(strings.TrimSpace(s))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" {
		return Clause[models.Customer]{}
	}
	suffix := "@" + domain
	return Clause[models.Customer]{Pred: func(_ *Eval, c models.Customer) bool {
		return strings.HasSuffix(strings.ToLower(c.Email), suffix)
	}}
}

// hasPhone keeps customers with a phone number when true, and only customers
// without one when false.
func hasPhone(value any) Clause[models.Customer] {
	if isBlank(value) {
		return Clause[models.Customer]{}
	}
	want, ok := toBool(value)
	if !ok {
		return noneClause[models.Customer]()
	}
	return Clause[models.Customer]{Pred: func(_ *Eval, c models.Customer) bool {
		return (c.Phone != "") == want
	}}
}
