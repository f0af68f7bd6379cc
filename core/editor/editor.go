// Package editor manages the editor accounts: users holding the editor role.
package editor

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/user"
)

const welcomeTemplate = "editor_welcome"

// Input contains information needed to create an editor. Roles are ignored.
type Input struct {
	user.NewUser
}

func (in *Input) Record() user.User {
	in.Roles = []string{user.RoleEditor}
	return in.NewUser.Record()
}

// Patch modifies an editor; the password is only changed when set.
type Patch = user.UpdateUser

func Schema() crud.Schema[user.User] {
	schema := user.Schema()
	schema.Name = "editor"
	schema.Plural = "editors"
	schema.Scope = user.User.IsEditor
	schema.Listing = listing.Spec{SearchFields: []string{"firstName", "lastName", "email"}}
	return schema
}

type Service struct {
	*crud.Service[user.User]
	users *user.Service
}

func NewService(repo crud.Repository[user.User], validate *validator.Validate, users *user.Service, opts ...crud.Option) *Service {
	return &Service{
		Service: crud.NewService(Schema(), repo, validate, opts...),
		users:   users,
	}
}

// Create creates the editor account and mails them a welcome message.
func (svc *Service) Create(ctx context.Context, in crud.Input[user.User]) (user.User, error) {
	usr, err := svc.Service.Create(ctx, in)
	if err != nil {
		return user.User{}, err
	}
	svc.users.Mail(svc.users.WelcomeMessage(usr, welcomeTemplate))
	return usr, nil
}

