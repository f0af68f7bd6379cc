package framework

import (
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	MinLevel = 1
	MaxLevel = 10
)

// Framework is a qualifications framework level, eg. "NVQ level 4".
type Framework struct {
	crud.Base
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Level       int    `json:"level" db:"level"`
	Type        string `json:"type,omitempty" db:"type"`
}

func (f Framework) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return f.Name, true
	case "description":
		return f.Description, true
	case "level":
		return f.Level, true
	case "type":
		return f.Type, true
	}
	return f.Base.Field(name)
}

// Input is used for both creating and updating frameworks.
type Input struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Level       int    `json:"level" validate:"required,min=1,max=10"`
	Type        string `json:"type,omitempty" validate:"max=50"`
}

func (in *Input) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Description = core.CleanString(in.Description)
	in.Type = core.CleanString(in.Type)
}

func (in *Input) Record() Framework {
	var f Framework
	in.Apply(&f)
	return f
}

func (in *Input) Apply(f *Framework) {
	f.Name = in.Name
	f.Description = in.Description
	f.Level = in.Level
	f.Type = in.Type
}

func Schema() crud.Schema[Framework] {
	return crud.Schema[Framework]{
		Name:   "framework",
		Plural: "frameworks",
		Table:  "frameworks",
		Base:   func(f *Framework) *crud.Base { return &f.Base },
		Columns: func(f Framework) map[string]interface{} {
			return map[string]interface{}{
				"name":        f.Name,
				"description": f.Description,
				"level":       f.Level,
				"type":        f.Type,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"name", "description", "type"},
			CategoryField: "type",
		},
		Unique: crud.UniqueField("name", "a framework with this name already exists", func(f Framework) string {
			return core.CleanString(f.Name, true)
		}),
		DefaultOrdering: core.ParseOrdering("level,name"),
	}
}
