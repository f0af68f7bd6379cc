package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/uniguide/core"
)

func TestInput_Validate(t *testing.T) {
	validate, translator := core.NewValidator()

	tests := []struct {
		name    string
		in      Input
		want    Input
		wantErr map[string]string
	}{
		{
			name: "lowest level",
			in:   Input{Name: " NQF ", Level: MinLevel},
			want: Input{Name: "NQF", Level: 1},
		},
		{
			name: "highest level",
			in:   Input{Name: "NQF", Level: MaxLevel, Type: " national "},
			want: Input{Name: "NQF", Level: 10, Type: "national"},
		},
		{
			name:    "level is required",
			in:      Input{Name: "NQF"},
			want:    Input{Name: "NQF"},
			wantErr: map[string]string{"level": "this field is required"},
		},
		{
			name:    "level above range",
			in:      Input{Name: "NQF", Level: 11},
			want:    Input{Name: "NQF", Level: 11},
			wantErr: map[string]string{"level": "level must be 10 or less"},
		},
		{
			name:    "name is required",
			in:      Input{Name: "  ", Level: 4},
			want:    Input{Level: 4},
			wantErr: map[string]string{"name": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Clean()
			assert.Equal(t, tt.want, in)
			assert.Equal(t, tt.wantErr, core.FieldErrors(validate.Struct(&in), translator))
		})
	}
}

func TestSchema_unique(t *testing.T) {
	schema := Schema()
	nqf := Framework{Name: "NQF"}
	nqf.ID = 1

	assert.Len(t, schema.Unique(Framework{Name: "nqf"}, []Framework{nqf}), 1)
	assert.Empty(t, schema.Unique(Framework{Name: "EQF"}, []Framework{nqf}))
}
