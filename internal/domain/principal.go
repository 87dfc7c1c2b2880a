package domain

import (
	"sort"
	"time"
)

// Kind 认证主体类型，每种类型独立的表与 guard
type Kind string

const (
	KindAdmin     Kind = "admin"
	KindProvider  Kind = "provider"
	KindApplicant Kind = "applicant"
)

// DefaultRole 注册时自动分配的角色
func (k Kind) DefaultRole() string {
	switch k {
	case KindProvider:
		return "Provider"
	case KindApplicant:
		return "Applicant"
	default:
		return "Admin"
	}
}

// Label 面向用户的主体名称
func (k Kind) Label() string {
	switch k {
	case KindProvider:
		return "Provider"
	case KindApplicant:
		return "Applicant"
	default:
		return "User"
	}
}

// Account 三类主体共用字段
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone        string    `gorm:"uniqueIndex;size:11;not null" json:"phone"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) Base() *Account { return a }

// Principal 任意可认证主体
type Principal interface {
	Base() *Account
	RoleNames() []string
	PermissionNames() []string
}

type User struct {
	Account
	Roles []Role `gorm:"many2many:user_roles" json:"roles"`
}

func (User) TableName() string { return "users" }

func (u *User) RoleNames() []string       { return roleNames(u.Roles) }
func (u *User) PermissionNames() []string { return permissionNames(u.Roles) }

type Provider struct {
	Account
	Roles []Role `gorm:"many2many:provider_roles" json:"roles"`
}

func (Provider) TableName() string { return "providers" }

func (p *Provider) RoleNames() []string       { return roleNames(p.Roles) }
func (p *Provider) PermissionNames() []string { return permissionNames(p.Roles) }

type Applicant struct {
	Account
	Roles []Role `gorm:"many2many:applicant_roles" json:"roles"`
}

func (Applicant) TableName() string { return "applicants" }

func (a *Applicant) RoleNames() []string       { return roleNames(a.Roles) }
func (a *Applicant) PermissionNames() []string { return permissionNames(a.Roles) }

func roleNames(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

// permissionNames 各角色权限去重后的并集
func permissionNames(roles []Role) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p.Name)
		}
	}
	sort.Strings(out)
	return out
}
