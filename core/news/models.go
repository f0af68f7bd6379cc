package news

import (
	"context"
	"time"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/listing"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

var Statuses = []string{StatusDraft, StatusPublished, StatusArchived}

type News struct {
	crud.Base
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary,omitempty" db:"summary"`
	Content     string     `json:"content" db:"content"`
	Category    string     `json:"category,omitempty" db:"category"`
	Status      string     `json:"status" db:"status"`
	Author      *crud.Ref  `json:"author,omitempty" db:"author"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" db:"published_at"` // UTC
}

func (n News) Field(name string) (interface{}, bool) {
	switch name {
	case "title":
		return n.Title, true
	case "summary":
		return n.Summary, true
	case "content":
		return n.Content, true
	case "category":
		return n.Category, true
	case "status":
		return n.Status, true
	case "author":
		if n.Author == nil {
			return nil, true
		}
		return n.Author.Name, true
	case "publishedAt", "published_at":
		return n.PublishedAt, true
	}
	return n.Base.Field(name)
}

// Input is used for both creating and updating news.
type Input struct {
	Title    string `json:"title" validate:"required,min=5,max=200"`
	Summary  string `json:"summary,omitempty" validate:"max=500"`
	Content  string `json:"content" validate:"required,min=20"`
	Category string `json:"category,omitempty" validate:"max=50"`
	Status   string `json:"status,omitempty" validate:"required,oneof=draft published archived"`
}

func (in *Input) Clean() {
	in.Title = core.CleanString(in.Title)
	in.Summary = core.CleanString(in.Summary)
	in.Content = core.CleanString(in.Content)
	in.Category = core.CleanString(in.Category, true)
	in.Status = core.CleanString(in.Status, true)
	if in.Status == "" {
		in.Status = StatusDraft
	}
}

func (in *Input) Record() News {
	var n News
	in.Apply(&n)
	return n
}

func (in *Input) Apply(n *News) {
	n.Title = in.Title
	n.Summary = in.Summary
	n.Content = in.Content
	n.Category = in.Category
	n.Status = in.Status
}

// Schema returns the news schema. authors resolves the user creating an article;
// it may be nil when the schema only backs a repository.
func Schema(authors crud.Lookup[crud.Ref]) crud.Schema[News] {
	return crud.Schema[News]{
		Name:   "news",
		Plural: "news",
		Table:  "news",
		Base:   func(n *News) *crud.Base { return &n.Base },
		Columns: func(n News) map[string]interface{} {
			return map[string]interface{}{
				"title":        n.Title,
				"summary":      n.Summary,
				"content":      n.Content,
				"category":     n.Category,
				"status":       n.Status,
				"author":       n.Author,
				"published_at": n.PublishedAt,
			}
		},
		Listing: listing.Spec{
			SearchFields:  []string{"title", "summary", "content", "author"},
			CategoryField: "category",
			StatusField:   "status",
		},
		Prepare: func(ctx context.Context, n *News) error {
			if n.Author == nil && authors != nil {
				if actor := crud.ActorFrom(ctx); actor != 0 {
					ref, err := crud.ResolveRef(ctx, authors, &crud.Ref{ID: actor}, "author", "author not found", identity)
					if err != nil {
						return err
					}
					n.Author = ref
				}
			}
			return nil
		},
		Stamp: func(n *News, now time.Time) {
			if n.Status == StatusPublished && n.PublishedAt == nil {
				n.PublishedAt = &now
			}
		},
		DefaultOrdering: core.ParseOrdering("-createdAt"),
	}
}

func identity(r crud.Ref) crud.Ref { return r }
