package news

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/storage/database/inmem"
)

const content = "The exam timetable is out now."

func TestInput_Validate(t *testing.T) {
	validate, translator := core.NewValidator()

	tests := []struct {
		name    string
		in      Input
		want    Input
		wantErr map[string]string
	}{
		{
			name: "status defaults to draft",
			in:   Input{Title: " Exam dates ", Content: content, Category: " Exams "},
			want: Input{Title: "Exam dates", Content: content, Category: "exams", Status: StatusDraft},
		},
		{
			name: "shortest title & content",
			in:   Input{Title: "Exams", Content: "abcdefghijklmnopqrst", Status: "Published"},
			want: Input{Title: "Exams", Content: "abcdefghijklmnopqrst", Status: StatusPublished},
		},
		{
			name: "title & content too short",
			in:   Input{Title: "News", Content: "abcdefghijklmnopqrs"},
			want: Input{Title: "News", Content: "abcdefghijklmnopqrs", Status: StatusDraft},
			wantErr: map[string]string{
				"title":   "title must be at least 5 characters in length",
				"content": "content must be at least 20 characters in length",
			},
		},
		{
			name:    "required fields",
			in:      Input{Title: "  ", Content: " "},
			want:    Input{Status: StatusDraft},
			wantErr: map[string]string{"title": "this field is required", "content": "this field is required"},
		},
		{
			name:    "unknown status",
			in:      Input{Title: "Exam dates", Content: content, Status: "Live"},
			want:    Input{Title: "Exam dates", Content: content, Status: "live"},
			wantErr: map[string]string{"status": "status must be one of [draft published archived]"},
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

func TestSchema_publishedAt(t *testing.T) {
	validate, _ := core.NewValidator()
	schema := Schema(nil)
	svc := crud.NewService(schema, inmemdb.NewRepository(inmemdb.Open(), schema), validate)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.NowFunc = func() time.Time { return created }

	draft, err := svc.Create(ctx, &Input{Title: "Exam dates", Content: content})
	require.NoError(t, err)
	assert.Nil(t, draft.PublishedAt)

	published := created.Add(48 * time.Hour)
	svc.NowFunc = func() time.Time { return published }

	n, err := svc.Update(ctx, draft.ID, &Input{Title: "Exam dates", Content: content, Status: StatusPublished})
	require.NoError(t, err)
	require.NotNil(t, n.PublishedAt)
	assert.Equal(t, published, *n.PublishedAt)
	assert.Equal(t, published, n.UpdatedAt)

	t.Run("kept on later edits", func(t *testing.T) {
		svc.NowFunc = func() time.Time { return published.Add(time.Hour) }
		n, err := svc.Update(ctx, draft.ID, &Input{Title: "Exam dates (updated)", Content: content, Status: StatusPublished})
		require.NoError(t, err)
		require.NotNil(t, n.PublishedAt)
		assert.Equal(t, published, *n.PublishedAt)
	})
}
