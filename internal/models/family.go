package models

import "time"

// Role identifies the kind of guardian a family member is.
type Role string

const (
	RolePrimary     Role = "primary"
	RoleParent      Role = "parent"
	RoleGuardian    Role = "guardian"
	RoleGrandparent Role = "grandparent"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RolePrimary, RoleParent, RoleGuardian, RoleGrandparent:
		return true
	}
	return false
}

// Permission is a member's access level within a family. Levels are
// totally ordered: view < comment < manage < full.
type Permission string

const (
	PermissionView    Permission = "view"
	PermissionComment Permission = "comment"
	PermissionManage  Permission = "manage"
	PermissionFull    Permission = "full"
)

var permissionRank = map[Permission]int{
	PermissionView:    1,
	PermissionComment: 2,
	PermissionManage:  3,
	PermissionFull:    4,
}

// Valid reports whether the permission is one of the known levels.
func (p Permission) Valid() bool {
	_, ok := permissionRank[p]
	return ok
}

// AtLeast reports whether p grants everything required does.
func (p Permission) AtLeast(required Permission) bool {
	return permissionRank[p] >= permissionRank[required]
}

// Family represents a group of guardians managing kids together
type Family struct {
	ID        int64
	Name      string
	JoinCode  string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FamilyMember represents the relationship between a user and a family.
// Exactly one primary member exists per family; the primary always holds
// full permission and cannot be edited or removed.
type FamilyMember struct {
	ID         int64
	FamilyID   int64
	UserID     int64
	Role       Role
	Permission Permission
	JoinedAt   time.Time
}

// IsPrimary reports whether this member is the family owner.
func (m *FamilyMember) IsPrimary() bool {
	return m.Role == RolePrimary
}

// FamilyWithMembers combines a family with its member information
type FamilyWithMembers struct {
	Family  Family
	Members []FamilyMember
	Users   []User
}
