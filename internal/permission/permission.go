// Package permission holds the closed capability vocabulary, the role table and
// the oracle that answers "may this subject do that".
package permission

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a capability token of the form "resource:action".
type Permission string

const (
	ArticleView     Permission = "article:view"
	ArticleCreate   Permission = "article:create"
	ArticleUpdate   Permission = "article:update"
	ArticleDelete   Permission = "article:delete"
	ArticleCopy     Permission = "article:copy"
	ArticleTransfer Permission = "article:transfer"

	RackView   Permission = "rack:view"
	RackCreate Permission = "rack:create"
	RackUpdate Permission = "rack:update"
	RackDelete Permission = "rack:delete"

	StoreView   Permission = "store:view"
	StoreCreate Permission = "store:create"
	StoreUpdate Permission = "store:update"
	StoreDelete Permission = "store:delete"

	UserView   Permission = "user:view"
	UserCreate Permission = "user:create"
	UserUpdate Permission = "user:update"
	UserDelete Permission = "user:delete"

	TaskView   Permission = "task:view"
	TaskCreate Permission = "task:create"
	TaskUpdate Permission = "task:update"
	TaskDelete Permission = "task:delete"

	AnnouncementView   Permission = "announcement:view"
	AnnouncementCreate Permission = "announcement:create"
	AnnouncementUpdate Permission = "announcement:update"
	AnnouncementDelete Permission = "announcement:delete"

	AuditView   Permission = "audit:view"
	AuditCreate Permission = "audit:create"
	AuditUpdate Permission = "audit:update"
	AuditDelete Permission = "audit:delete"

	LogView  Permission = "log:view"
	LogClear Permission = "log:clear"
)

var all = []Permission{
	ArticleView, ArticleCreate, ArticleUpdate, ArticleDelete, ArticleCopy, ArticleTransfer,
	RackView, RackCreate, RackUpdate, RackDelete,
	StoreView, StoreCreate, StoreUpdate, StoreDelete,
	UserView, UserCreate, UserUpdate, UserDelete,
	TaskView, TaskCreate, TaskUpdate, TaskDelete,
	AnnouncementView, AnnouncementCreate, AnnouncementUpdate, AnnouncementDelete,
	AuditView, AuditCreate, AuditUpdate, AuditDelete,
	LogView, LogClear,
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(all))
	for _, p := range all {
		m[p] = struct{}{}
	}
	return m
}()

// All returns every grantable permission in declaration order.
func All() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}

func (p Permission) String() string { return string(p) }

func (p Permission) Valid() bool {
	_, ok := known[p]
	return ok
}

// Resource returns the part before the colon.
func (p Permission) Resource() string {
	r, _, _ := strings.Cut(string(p), ":")
	return r
}

// Parse rejects anything outside the vocabulary, including "admin".
func Parse(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

func (p *Permission) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// ParseList parses a list of tokens, failing on the first unknown one.
func ParseList(tokens []string) ([]Permission, error) {
	out := make([]Permission, 0, len(tokens))
	for _, t := range tokens {
		p, err := Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return Normalize(out), nil
}

// Normalize removes duplicates and sorts.
func Normalize(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
