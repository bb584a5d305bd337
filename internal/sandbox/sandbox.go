// Package sandbox implements the permission gate a render runs under: a set
// of glob-pattern allow/deny rules per resource kind (filesystem read,
// filesystem write, network host, external process, environment variable),
// with deny always taking precedence over allow.
package sandbox

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind identifies which permission category a rule or check belongs to.
type Kind string

const (
	KindRead  Kind = "read"
	KindWrite Kind = "write"
	KindNet   Kind = "net"
	KindRun   Kind = "run"
	KindEnv   Kind = "env"
)

// ErrDenied is returned by Check when a resource is not allowed.
type ErrDenied struct {
	Kind     Kind
	Resource string
}

func (e *ErrDenied) Error() string {
	return fmt.Sprintf("sandbox: %s access to %q denied", e.Kind, e.Resource)
}

// rule is a single glob pattern plus whether it allows or denies a match.
type rule struct {
	pattern string
	deny    bool
}

// Policy is a built permission gate: one ordered rule list per Kind. Rules
// are evaluated deny-first: if any deny rule matches, access is refused even
// if an allow rule also matches.
type Policy struct {
	rules map[Kind][]rule
}

// NewPolicy returns an empty Policy that denies everything (no allow rules
// match anything absent an explicit Allow* call).
func NewPolicy() *Policy {
	return &Policy{rules: make(map[Kind][]rule)}
}

// AllowRead registers a glob pattern permitting filesystem reads.
func (p *Policy) AllowRead(pattern string) *Policy { return p.allow(KindRead, pattern) }

// AllowWrite registers a glob pattern permitting filesystem writes.
func (p *Policy) AllowWrite(pattern string) *Policy { return p.allow(KindWrite, pattern) }

// AllowNet registers a glob pattern permitting network access to matching hosts.
func (p *Policy) AllowNet(pattern string) *Policy { return p.allow(KindNet, pattern) }

// AllowRun registers a glob pattern permitting execution of matching commands.
func (p *Policy) AllowRun(pattern string) *Policy { return p.allow(KindRun, pattern) }

// AllowEnv registers a glob pattern permitting access to matching
// environment variable names.
func (p *Policy) AllowEnv(pattern string) *Policy { return p.allow(KindEnv, pattern) }

// DenyRead registers a glob pattern that overrides any matching AllowRead rule.
func (p *Policy) DenyRead(pattern string) *Policy { return p.deny(KindRead, pattern) }

// DenyWrite registers a glob pattern that overrides any matching AllowWrite rule.
func (p *Policy) DenyWrite(pattern string) *Policy { return p.deny(KindWrite, pattern) }

// DenyNet registers a glob pattern that overrides any matching AllowNet rule.
func (p *Policy) DenyNet(pattern string) *Policy { return p.deny(KindNet, pattern) }

// DenyRun registers a glob pattern that overrides any matching AllowRun rule.
func (p *Policy) DenyRun(pattern string) *Policy { return p.deny(KindRun, pattern) }

// DenyEnv registers a glob pattern that overrides any matching AllowEnv rule.
func (p *Policy) DenyEnv(pattern string) *Policy { return p.deny(KindEnv, pattern) }

func (p *Policy) allow(kind Kind, pattern string) *Policy {
	p.rules[kind] = append(p.rules[kind], rule{pattern: pattern, deny: false})
	return p
}

func (p *Policy) deny(kind Kind, pattern string) *Policy {
	p.rules[kind] = append(p.rules[kind], rule{pattern: pattern, deny: true})
	return p
}

// Check reports whether resource is permitted under kind. Deny rules are
// evaluated first: any matching deny rule refuses access regardless of
// allow rules. Absent any matching allow rule, access is refused.
func (p *Policy) Check(kind Kind, resource string) error {
	if p.matchesAny(kind, resource, true) {
		return &ErrDenied{Kind: kind, Resource: resource}
	}
	if p.matchesAny(kind, resource, false) {
		return nil
	}
	return &ErrDenied{Kind: kind, Resource: resource}
}

// Allowed is a boolean convenience wrapper over Check.
func (p *Policy) Allowed(kind Kind, resource string) bool {
	return p.Check(kind, resource) == nil
}

func (p *Policy) matchesAny(kind Kind, resource string, deny bool) bool {
	for _, r := range p.rules[kind] {
		if r.deny != deny {
			continue
		}
		if matched, err := doublestar.Match(r.pattern, resource); err == nil && matched {
			return true
		}
	}
	return false
}
