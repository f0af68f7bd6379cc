package subject

import (
	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	LevelAL = "AL" // advanced level
	LevelOL = "OL" // ordinary level
)

var Levels = []string{LevelAL, LevelOL}

type Subject struct {
	crud.Base
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Level       string `json:"level" db:"level"`
	Description string `json:"description,omitempty" db:"description"`
}

func (s Subject) Field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return s.Name, true
	case "code":
		return s.Code, true
	case "level":
		return s.Level, true
	case "description":
		return s.Description, true
	}
	return s.Base.Field(name)
}

// Input is used for both creating and updating subjects.
type Input struct {
	Name        string `json:"name" validate:"required,max=100"`
	Code        string `json:"code" validate:"required,min=2,max=10,alphanum"`
	Level       string `json:"level" validate:"required,oneof=AL OL"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

func (in *Input) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Code = core.CleanUpper(in.Code)
	in.Level = core.CleanUpper(in.Level)
	in.Description = core.CleanString(in.Description)
}

func (in *Input) Record() Subject {
	var s Subject
	in.Apply(&s)
	return s
}

func (in *Input) Apply(s *Subject) {
	s.Name = in.Name
	s.Code = in.Code
	s.Level = in.Level
	s.Description = in.Description
}

func Schema() crud.Schema[Subject] {
	return crud.Schema[Subject]{
		Name:   "subject",
		Plural: "subjects",
		Table:  "subjects",
		Base:   func(s *Subject) *crud.Base { return &s.Base },
		Columns: func(s Subject) map[string]interface{} {
			return map[string]interface{}{
				"name":        s.Name,
				"code":        s.Code,
				"level":       s.Level,
				"description": s.Description,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"name", "code", "description"},
			CategoryField: "level",
		},
		Unique: crud.UniqueField("code", "a subject with this code already exists", func(s Subject) string {
			return s.Code
		}),
		DefaultOrdering: core.ParseOrdering("name"),
	}
}
