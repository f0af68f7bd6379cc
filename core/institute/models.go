package institute

import (
	"context"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	TypeGovernment     = "government"
	TypePrivate        = "private"
	TypeSemiGovernment = "semi_government"
)

var Types = []string{TypeGovernment, TypePrivate, TypeSemiGovernment}

type Institute struct {
	crud.Base
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code,omitempty" db:"code"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description,omitempty" db:"description"`
	Address     string    `json:"address,omitempty" db:"address"`
	Website     string    `json:"website,omitempty" db:"website"`
	Email       string    `json:"email,omitempty" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	University  *crud.Ref `json:"university,omitempty" db:"university"` // affiliating university, itself an institute
}

func (i Institute) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return i.Name, true
	case "code":
		return i.Code, true
	case "type":
		return i.Type, true
	case "description":
		return i.Description, true
	case "address":
		return i.Address, true
	case "website":
		return i.Website, true
	case "email":
		return i.Email, true
	case "phone":
		return i.Phone, true
	case "university":
		if i.University == nil {
			return nil, true
		}
		return i.University.Name, true
	}
	return i.Base.Field(name)
}

// Ref is the projection embedded in the institutes affiliated to i.
func (i Institute) Ref() crud.Ref {
	return crud.Ref{ID: i.ID, Name: i.Name, Type: i.Type}
}

// Input is used for both creating and updating institutes.
type Input struct {
	Name         string `json:"name" validate:"required,max=200"`
	Code         string `json:"code,omitempty" validate:"omitempty,max=20,code"`
	Type         string `json:"type" validate:"required,oneof=government private semi_government"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	Address      string `json:"address,omitempty" validate:"max=300"`
	Website      string `json:"website,omitempty" validate:"omitempty,url"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"max=20"`
	UniversityID int    `json:"universityId,omitempty" validate:"min=0"`
}

func (in *Input) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanUpper(in.Code)
	in.Type = core.CleanString(in.Type, true)
	in.Description = core.CleanString(in.Description)
	in.Address = core.CleanString(in.Address)
	in.Website = core.CleanString(in.Website)
	in.Email = core.CleanString(in.Email, true)
	in.Phone = core.CleanString(in.Phone)
}

func (in *Input) Record() Institute {
	var i Institute
	in.Apply(&i)
	return i
}

func (in *Input) Apply(i *Institute) {
	i.Name = in.Name
	i.Code = in.Code
	i.Type = in.Type
	i.Description = in.Description
	i.Address = in.Address
	i.Website = in.Website
	i.Email = in.Email
	i.Phone = in.Phone
	i.University = nil
	if in.UniversityID > 0 {
		i.University = &crud.Ref{ID: in.UniversityID}
	}
}

// Schema returns the institutes schema. universities resolves the affiliating university;
// it may be nil when the schema only backs a repository.
func Schema(universities crud.Lookup[Institute]) crud.Schema[Institute] {
	schema := crud.Schema[Institute]{
		Name:   "institute",
		Plural: "institutes",
		Table:  "institutes",
		Base:   func(i *Institute) *crud.Base { return &i.Base },
		Columns: func(i Institute) map[string]interface{} {
			return map[string]interface{}{
				"name":        i.Name,
				"code":        i.Code,
				"type":        i.Type,
				"description": i.Description,
				"address":     i.Address,
				"website":     i.Website,
				"email":       i.Email,
				"phone":       i.Phone,
				"university":  i.University,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"name", "code", "address", "university"},
			CategoryField: "type",
		},
		Unique: crud.UniqueField("code", "an institute with this code already exists", func(i Institute) string {
			return i.Code
		}),
		DefaultOrdering: core.ParseOrdering("name"),
	}

	if universities != nil {
		schema.Prepare = func(ctx context.Context, i *Institute) error {
			if i.University != nil && i.University.ID == i.ID {
				return core.NewValidationError(nil, core.FieldError{
					Field: "universityId", Error: "an institute cannot be its own university",
				})
			}
			ref, err := crud.ResolveRef(ctx, universities, i.University, "universityId", "university not found", Institute.Ref)
			if err != nil {
				return err
			}
			i.University = ref
			return nil
		}
	}
	return schema
}
