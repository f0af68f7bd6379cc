// Package field manages the academic fields: major fields and the sub fields they group.
package field

import (
	"context"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

type MajorField struct {
	crud.Base
	Name        string `json:"name" db:"name"`
	Code        string `json:"code,omitempty" db:"code"`
	Description string `json:"description,omitempty" db:"description"`
}

func (f MajorField) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return f.Name, true
	case "code":
		return f.Code, true
	case "description":
		return f.Description, true
	}
	return f.Base.Field(name)
}

func (f MajorField) Ref() crud.Ref {
	return crud.Ref{ID: f.ID, Name: f.Name}
}

type SubField struct {
	crud.Base
	Name        string   `json:"name" db:"name"`
	Code        string   `json:"code,omitempty" db:"code"`
	Description string   `json:"description,omitempty" db:"description"`
	MajorField  crud.Ref `json:"majorField" db:"major_field"`
}

func (f SubField) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return f.Name, true
	case "code":
		return f.Code, true
	case "description":
		return f.Description, true
	case "majorField", "major_field":
		return f.MajorField.Name, true
	case "majorFieldId":
		return f.MajorField.ID, true
	}
	return f.Base.Field(name)
}

// MajorInput is used for both creating and updating major fields.
type MajorInput struct {
	Name        string `json:"name" validate:"required,max=150"`
	Code        string `json:"code,omitempty" validate:"omitempty,max=20,code"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

func (in *MajorInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanUpper(in.Code)
	in.Description = core.CleanString(in.Description)
}

func (in *MajorInput) Record() MajorField {
	var f MajorField
	in.Apply(&f)
	return f
}

func (in *MajorInput) Apply(f *MajorField) {
	f.Name = in.Name
	f.Code = in.Code
	f.Description = in.Description
}

// SubInput is used for both creating and updating sub fields.
type SubInput struct {
	Name         string `json:"name" validate:"required,max=150"`
	Code         string `json:"code,omitempty" validate:"omitempty,max=20,code"`
	Description  string `json:"description,omitempty" validate:"max=2000"`
	MajorFieldID int    `json:"majorFieldId" validate:"required,min=1"`
}

func (in *SubInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanUpper(in.Code)
	in.Description = core.CleanString(in.Description)
}

func (in *SubInput) Record() SubField {
	var f SubField
	in.Apply(&f)
	return f
}

func (in *SubInput) Apply(f *SubField) {
	f.Name = in.Name
	f.Code = in.Code
	f.Description = in.Description
	f.MajorField = crud.Ref{ID: in.MajorFieldID}
}

func MajorSchema() crud.Schema[MajorField] {
	return crud.Schema[MajorField]{
		Name:   "major field",
		Plural: "major-fields",
		Table:  "major_fields",
		Base:   func(f *MajorField) *crud.Base { return &f.Base },
		Columns: func(f MajorField) map[string]interface{} {
			return map[string]interface{}{
				"name":        f.Name,
				"code":        f.Code,
				"description": f.Description,
			}
		},
		Listing: listing.Spec{SearchFields: []string{"name", "code", "description"}},
		Unique: crud.UniqueAll(
			crud.UniqueField("name", "a major field with this name already exists", func(f MajorField) string {
				return core.CleanString(f.Name, true)
			}),
			crud.UniqueField("code", "a major field with this code already exists", func(f MajorField) string {
				return f.Code
			}),
		),
		DefaultOrdering: core.ParseOrdering("name"),
	}
}

// SubSchema returns the sub fields schema. majors resolves the major field of a sub field;
// it may be nil when the schema only backs a repository.
func SubSchema(majors crud.Lookup[MajorField]) crud.Schema[SubField] {
	schema := crud.Schema[SubField]{
		Name:   "sub field",
		Plural: "sub-fields",
		Table:  "sub_fields",
		Base:   func(f *SubField) *crud.Base { return &f.Base },
		Columns: func(f SubField) map[string]interface{} {
			return map[string]interface{}{
				"name":        f.Name,
				"code":        f.Code,
				"description": f.Description,
				"major_field": f.MajorField,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"name", "code", "description", "majorField"},
			CategoryField: "majorFieldId",
		},
		Unique: crud.UniqueField("code", "a sub field with this code already exists", func(f SubField) string {
			return f.Code
		}),
		DefaultOrdering: core.ParseOrdering("majorField,name"),
	}

	if majors != nil {
		schema.Prepare = func(ctx context.Context, f *SubField) error {
			ref, err := crud.ResolveRef(ctx, majors, &f.MajorField, "majorFieldId", "major field not found", MajorField.Ref)
			if err != nil {
				return err
			}
			if ref == nil {
				return core.NewValidationError(nil, core.FieldError{Field: "majorFieldId", Error: "this field is required"})
			}
			f.MajorField = *ref
			return nil
		}
	}
	return schema
}
