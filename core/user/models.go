package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleEditor  = "editor"
)

var (
	AllRoles = []string{RoleAdmin, RoleManager, RoleEditor}

	rolePriorities = map[string]int{
		RoleAdmin:   30,
		RoleManager: 20,
		RoleEditor:  10,
	}

	Roles = []Role{
		{Name: "Editor", Value: RoleEditor},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	crud.Base
	FirstName    string          `json:"firstName" db:"first_name"`
	LastName     string          `json:"lastName" db:"last_name"`
	Email        string          `json:"email" db:"email"`
	Roles        crud.StringList `json:"roles" db:"roles"`
	PasswordHash []byte          `json:"-" db:"password_hash"`
	LastLogin    *time.Time      `json:"lastLogin,omitempty" db:"last_login"` // UTC
}

func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) Field(name string) (interface{}, bool) {
	switch name {
	case "firstName", "first_name":
		return u.FirstName, true
	case "lastName", "last_name":
		return u.LastName, true
	case "name":
		return u.Name(), true
	case "email":
		return u.Email, true
	case "role", "roles":
		return strings.Join(u.Roles, ","), true
	case "lastLogin", "last_login":
		return u.LastLogin, true
	}
	return u.Base.Field(name)
}

// Ref is the projection embedded in records authored by u.
func (u User) Ref() crud.Ref {
	return crud.Ref{ID: u.ID, Name: u.Name(), Type: u.Role()}
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) HasRole(roles ...string) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Role returns the highest priority role of u.
func (u User) Role() string {
	var role string
	for _, r := range u.Roles {
		if role == "" || RolePriority(r) > RolePriority(role) {
			role = r
		}
	}
	return role
}

func (u User) IsAdmin() bool   { return u.HasRole(RoleAdmin) }
func (u User) IsManager() bool { return u.HasRole(RoleManager) }
func (u User) IsEditor() bool  { return u.HasRole(RoleEditor) }

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string   `json:"firstName" validate:"required,max=100"`
	LastName        string   `json:"lastName" validate:"max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"required,max=72"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Clean() {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// Record builds the user. Password length is bounded by validation so hashing cannot fail.
func (nu *NewUser) Record() User {
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Roles:     crud.StringList(nu.Roles),
	}
	_ = usr.SetPassword(nu.Password)
	return usr
}

// UpdateUser defines what information may be provided to modify an existing User.
// Password is only changed when set.
type UpdateUser struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password,omitempty" validate:"omitempty,max=72"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Clean() {
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
}

func (uu *UpdateUser) Apply(usr *User) {
	usr.FirstName = uu.FirstName
	usr.LastName = uu.LastName
	usr.Email = uu.Email
	if uu.Password != "" {
		_ = usr.SetPassword(uu.Password)
	}
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Clean() {
	l.Email = core.CleanString(l.Email, true /* lower */)
}

type RequestPasswordReset struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"required,eqfield=Password"`
}

type SetUserPassword struct {
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func Schema() crud.Schema[User] {
	return crud.Schema[User]{
		Name:   "user",
		Plural: "users",
		Table:  "users",
		Base:   func(u *User) *crud.Base { return &u.Base },
		Columns: func(u User) map[string]interface{} {
			return map[string]interface{}{
				"first_name":    u.FirstName,
				"last_name":     u.LastName,
				"email":         u.Email,
				"roles":         u.Roles,
				"password_hash": u.PasswordHash,
				"last_login":    u.LastLogin,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"name", "email"},
			CategoryField: "role",
		},
		Unique: crud.UniqueField("email", ErrEmailExists.Error(), func(u User) string {
			return u.Email
		}),
		DefaultOrdering: core.ParseOrdering("firstName,lastName"),
	}
}
