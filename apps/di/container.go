// Package di builds the services shared by the applications over one storage backend.
package di

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/uniguide/core"
	"github.com/trezcool/uniguide/core/crud"
	"github.com/trezcool/uniguide/core/editor"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/field"
	"github.com/trezcool/uniguide/core/framework"
	"github.com/trezcool/uniguide/core/institute"
	"github.com/trezcool/uniguide/core/news"
	"github.com/trezcool/uniguide/core/search"
	"github.com/trezcool/uniguide/core/subject"
	"github.com/trezcool/uniguide/core/task"
	"github.com/trezcool/uniguide/core/user"
	"github.com/trezcool/uniguide/storage/database/inmem"
	"github.com/trezcool/uniguide/storage/database/sqlxrepo"
)

type (
	// Repositories holds one repository per table. Editors live in the users table.
	Repositories struct {
		Users       crud.Repository[user.User]
		Institutes  crud.Repository[institute.Institute]
		Subjects    crud.Repository[subject.Subject]
		News        crud.Repository[news.News]
		Events      crud.Repository[event.Event]
		Tasks       crud.Repository[task.Task]
		MajorFields crud.Repository[field.MajorField]
		SubFields   crud.Repository[field.SubField]
		Frameworks  crud.Repository[framework.Framework]
	}

	Container struct {
		Conf       *core.Config
		Validate   *validator.Validate
		Translator ut.Translator

		Users       *user.Service
		Editors     *editor.Service
		Institutes  *crud.Service[institute.Institute]
		Subjects    *crud.Service[subject.Subject]
		News        *crud.Service[news.News]
		Events      *crud.Service[event.Event]
		Tasks       *crud.Service[task.Task]
		MajorFields *crud.Service[field.MajorField]
		SubFields   *crud.Service[field.SubField]
		Frameworks  *crud.Service[framework.Framework]
		Search      *search.Service
	}
)

func MemoryRepositories(db *inmemdb.DB) Repositories {
	return Repositories{
		Users:       inmemdb.NewRepository(db, user.Schema()),
		Institutes:  inmemdb.NewRepository(db, institute.Schema(nil)),
		Subjects:    inmemdb.NewRepository(db, subject.Schema()),
		News:        inmemdb.NewRepository(db, news.Schema(nil)),
		Events:      inmemdb.NewRepository(db, event.Schema()),
		Tasks:       inmemdb.NewRepository(db, task.Schema(nil)),
		MajorFields: inmemdb.NewRepository(db, field.MajorSchema()),
		SubFields:   inmemdb.NewRepository(db, field.SubSchema(nil)),
		Frameworks:  inmemdb.NewRepository(db, framework.Schema()),
	}
}

func SQLRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:       sqlxrepo.NewRepository(db, user.Schema()),
		Institutes:  sqlxrepo.NewRepository(db, institute.Schema(nil)),
		Subjects:    sqlxrepo.NewRepository(db, subject.Schema()),
		News:        sqlxrepo.NewRepository(db, news.Schema(nil)),
		Events:      sqlxrepo.NewRepository(db, event.Schema()),
		Tasks:       sqlxrepo.NewRepository(db, task.Schema(nil)),
		MajorFields: sqlxrepo.NewRepository(db, field.MajorSchema()),
		SubFields:   sqlxrepo.NewRepository(db, field.SubSchema(nil)),
		Frameworks:  sqlxrepo.NewRepository(db, framework.Schema()),
	}
}

// NewContainer wires the services over repos. opts apply to every service (publisher, logger).
func NewContainer(conf *core.Config, repos Repositories, mailSvc core.EmailService, opts ...crud.Option) *Container {
	validate, translator := core.NewValidator()
	c := &Container{
		Conf:       conf,
		Validate:   validate,
		Translator: translator,
	}

	c.Users = user.NewService(repos.Users, validate, mailSvc, conf, opts...)
	c.Editors = editor.NewService(repos.Users, validate, c.Users, opts...)
	c.Institutes = crud.NewService(institute.Schema(repos.Institutes.Get), repos.Institutes, validate, opts...)
	c.Subjects = crud.NewService(subject.Schema(), repos.Subjects, validate, opts...)
	c.News = crud.NewService(news.Schema(authors(repos.Users)), repos.News, validate, opts...)
	c.Events = crud.NewService(event.Schema(), repos.Events, validate, opts...)
	c.Tasks = crud.NewService(task.Schema(people(repos.Users)), repos.Tasks, validate, opts...)
	c.MajorFields = crud.NewService(field.MajorSchema(), repos.MajorFields, validate, opts...)
	c.SubFields = crud.NewService(field.SubSchema(repos.MajorFields.Get), repos.SubFields, validate, opts...)
	c.Frameworks = crud.NewService(framework.Schema(), repos.Frameworks, validate, opts...)
	c.Search = search.NewService(c.Institutes, c.Subjects, c.News, c.Events)
	return c
}

func authors(users crud.Repository[user.User]) crud.Lookup[crud.Ref] {
	return func(ctx context.Context, id int) (crud.Ref, error) {
		usr, err := users.Get(ctx, id)
		if err != nil {
			return crud.Ref{}, err
		}
		return usr.Ref(), nil
	}
}

func people(users crud.Repository[user.User]) crud.Lookup[task.Person] {
	return func(ctx context.Context, id int) (task.Person, error) {
		usr, err := users.Get(ctx, id)
		if err != nil {
			return task.Person{}, err
		}
		return task.Person{ID: usr.ID, FirstName: usr.FirstName, LastName: usr.LastName, Email: usr.Email}, nil
	}
}
