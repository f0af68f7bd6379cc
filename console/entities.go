package console

import (
	"strconv"
	"strings"

	"github.com/trezcool/uniguide/client"
	"github.com/trezcool/uniguide/core/editor"
	"github.com/trezcool/uniguide/core/event"
	"github.com/trezcool/uniguide/core/field"
	"github.com/trezcool/uniguide/core/framework"
	"github.com/trezcool/uniguide/core/institute"
	"github.com/trezcool/uniguide/core/listing"
	"github.com/trezcool/uniguide/core/news"
	"github.com/trezcool/uniguide/core/subject"
	"github.com/trezcool/uniguide/core/task"
	"github.com/trezcool/uniguide/core/user"
)

// crudPage builds the list view and the modals of one resource.
func crudPage[T listing.Record](title string, res *client.Resource[T], spec listing.Spec, columns []Column[T],
	fields []FormField, newInput, newPatch func() Payload, checks Validation) (Page, *Modal[T]) {
	list := NewListView[T](res.Name(), res, spec, columns...)
	create := NewCreateModal[T]("New "+singular(title), fields, newInput, res.Create, checks)
	edit := NewEditModal[T]("Edit "+singular(title), fields, newPatch, res.Update, checks)
	return NewPage[T](title, list, create, edit), edit
}

func singular(title string) string {
	switch {
	case title == "News":
		return "article"
	case strings.HasSuffix(title, "ies"):
		return strings.ToLower(strings.TrimSuffix(title, "ies") + "y")
	}
	return strings.ToLower(strings.TrimSuffix(title, "s"))
}

func activeCol[T listing.Record]() Column[T] {
	return Column[T]{Title: "Active", Value: func(rec T) string { return yesNo(recordActive(rec)) }}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Pages builds the page of every entity type, bound to api.
func Pages(api *client.Client, checks Validation) []Page {
	return []Page{
		InstitutesPage(api.Institutes(), checks),
		SubjectsPage(api.Subjects(), checks),
		NewsPage(api.News(), checks),
		EventsPage(api.Events(), checks),
		TasksPage(api.Tasks(), checks),
		EditorsPage(api.Editors(), checks),
		MajorFieldsPage(api.MajorFields(), checks),
		SubFieldsPage(api.SubFields(), checks),
		FrameworksPage(api.Frameworks(), checks),
	}
}

func InstitutesPage(res *client.Resource[institute.Institute], checks Validation) Page {
	p, edit := crudPage(
		"Institutes", res, institute.Schema(nil).Listing,
		[]Column[institute.Institute]{
			{Title: "Name", Value: func(i institute.Institute) string { return i.Name }},
			{Title: "Code", Value: func(i institute.Institute) string { return i.Code }},
			{Title: "Type", Value: func(i institute.Institute) string { return i.Type }},
			{Title: "University", Value: func(i institute.Institute) string {
				if i.University == nil {
					return ""
				}
				return i.University.Name
			}},
			activeCol[institute.Institute](),
		},
		[]FormField{
			{Key: "name", Label: "Name"},
			{Key: "code", Label: "Code"},
			{Key: "type", Label: "Type", Kind: Select, Options: institute.Types},
			{Key: "description", Label: "Description"},
			{Key: "address", Label: "Address"},
			{Key: "website", Label: "Website"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone"},
			{Key: "universityId", Label: "University ID", Kind: Number},
		},
		func() Payload { return new(institute.Input) },
		func() Payload { return new(institute.Input) },
		checks,
	)
	edit.Prefill = func(i institute.Institute) map[string]string {
		if i.University == nil {
			return nil
		}
		return map[string]string{"universityId": strconv.Itoa(i.University.ID)}
	}
	return p
}

func SubjectsPage(res *client.Resource[subject.Subject], checks Validation) Page {
	p, _ := crudPage(
		"Subjects", res, subject.Schema().Listing,
		[]Column[subject.Subject]{
			{Title: "Name", Value: func(s subject.Subject) string { return s.Name }},
			{Title: "Code", Value: func(s subject.Subject) string { return s.Code }},
			{Title: "Level", Value: func(s subject.Subject) string { return s.Level }},
			activeCol[subject.Subject](),
		},
		SubjectFields,
		func() Payload { return new(subject.Input) },
		func() Payload { return new(subject.Input) },
		checks,
	)
	return p
}

var SubjectFields = []FormField{
	{Key: "name", Label: "Name"},
	{Key: "code", Label: "Code"},
	{Key: "level", Label: "Level", Kind: Select, Options: subject.Levels},
	{Key: "description", Label: "Description"},
}

func NewsPage(res *client.Resource[news.News], checks Validation) Page {
	p, _ := crudPage(
		"News", res, news.Schema(nil).Listing,
		[]Column[news.News]{
			{Title: "Title", Value: func(n news.News) string { return n.Title }},
			{Title: "Category", Value: func(n news.News) string { return n.Category }},
			{Title: "Status", Value: func(n news.News) string { return n.Status }},
			{Title: "Author", Value: func(n news.News) string {
				if n.Author == nil {
					return ""
				}
				return n.Author.Name
			}},
			activeCol[news.News](),
		},
		[]FormField{
			{Key: "title", Label: "Title"},
			{Key: "summary", Label: "Summary"},
			{Key: "content", Label: "Content"},
			{Key: "category", Label: "Category"},
			{Key: "status", Label: "Status", Kind: Select, Options: news.Statuses},
		},
		func() Payload { return new(news.Input) },
		func() Payload { return new(news.Input) },
		checks,
	)
	return p
}

func EventsPage(res *client.Resource[event.Event], checks Validation) Page {
	p, _ := crudPage(
		"Events", res, event.Schema().Listing,
		[]Column[event.Event]{
			{Title: "Title", Value: func(e event.Event) string { return e.Title }},
			{Title: "Type", Value: func(e event.Event) string { return e.EventType }},
			{Title: "Start", Value: func(e event.Event) string { return formatValue(e.StartDate, Date) }},
			{Title: "Location", Value: func(e event.Event) string { return e.Location }},
			{Title: "Public", Value: func(e event.Event) string { return yesNo(e.IsPublic) }},
			{Title: "Status", Value: func(e event.Event) string { return e.Status }},
			activeCol[event.Event](),
		},
		[]FormField{
			{Key: "title", Label: "Title"},
			{Key: "description", Label: "Description"},
			{Key: "eventType", Label: "Type"},
			{Key: "startDate", Label: "Start date", Kind: Date},
			{Key: "endDate", Label: "End date", Kind: Date},
			{Key: "location", Label: "Location"},
			{Key: "isPublic", Label: "Public", Kind: Checkbox},
			{Key: "status", Label: "Status", Kind: Select, Options: event.Statuses},
		},
		func() Payload { return new(event.Input) },
		func() Payload { return new(event.Input) },
		checks,
	)
	return p
}

func TasksPage(res *client.Resource[task.Task], checks Validation) Page {
	p, edit := crudPage(
		"Tasks", res, task.Schema(nil).Listing,
		[]Column[task.Task]{
			{Title: "Title", Value: func(t task.Task) string { return t.Title }},
			{Title: "Priority", Value: func(t task.Task) string { return t.Priority }},
			{Title: "Status", Value: func(t task.Task) string { return t.Status }},
			{Title: "Due", Value: func(t task.Task) string { return formatValue(t.DueDate, Date) }},
			{Title: "Assignee", Value: func(t task.Task) string {
				v, _ := t.Field("assignee")
				return strings.TrimSpace(formatValue(v, Text))
			}},
			activeCol[task.Task](),
		},
		[]FormField{
			{Key: "title", Label: "Title"},
			{Key: "description", Label: "Description"},
			{Key: "priority", Label: "Priority", Kind: Select, Options: task.Priorities},
			{Key: "status", Label: "Status", Kind: Select, Options: task.Statuses},
			{Key: "dueDate", Label: "Due date", Kind: Date},
			{Key: "assigneeId", Label: "Assignee ID", Kind: Number},
		},
		func() Payload { return new(task.Input) },
		func() Payload { return new(task.Input) },
		checks,
	)
	edit.Prefill = func(t task.Task) map[string]string {
		if t.Assignee == nil {
			return nil
		}
		return map[string]string{"assigneeId": strconv.Itoa(t.Assignee.ID)}
	}
	return p
}

var EditorFields = []FormField{
	{Key: "firstName", Label: "First name"},
	{Key: "lastName", Label: "Last name"},
	{Key: "email", Label: "Email"},
	{Key: "password", Label: "Password", Kind: Password},
	{Key: "confirmPassword", Label: "Confirm password", Kind: Password},
}

func EditorsPage(res *client.Resource[user.User], checks Validation) Page {
	p, _ := crudPage(
		"Editors", res, editor.Schema().Listing,
		[]Column[user.User]{
			{Title: "Name", Value: func(u user.User) string { return u.Name() }},
			{Title: "Email", Value: func(u user.User) string { return u.Email }},
			{Title: "Last login", Value: func(u user.User) string { return formatValue(u.LastLogin, Date) }},
			activeCol[user.User](),
		},
		EditorFields,
		func() Payload { return new(editor.Input) },
		func() Payload { return new(editor.Patch) },
		checks,
	)
	return p
}

var codedFields = []FormField{
	{Key: "name", Label: "Name"},
	{Key: "code", Label: "Code"},
	{Key: "description", Label: "Description"},
}

func MajorFieldsPage(res *client.Resource[field.MajorField], checks Validation) Page {
	p, _ := crudPage(
		"Major fields", res, field.MajorSchema().Listing,
		[]Column[field.MajorField]{
			{Title: "Name", Value: func(f field.MajorField) string { return f.Name }},
			{Title: "Code", Value: func(f field.MajorField) string { return f.Code }},
			activeCol[field.MajorField](),
		},
		codedFields,
		func() Payload { return new(field.MajorInput) },
		func() Payload { return new(field.MajorInput) },
		checks,
	)
	return p
}

func SubFieldsPage(res *client.Resource[field.SubField], checks Validation) Page {
	p, _ := crudPage(
		"Sub fields", res, field.SubSchema(nil).Listing,
		[]Column[field.SubField]{
			{Title: "Name", Value: func(f field.SubField) string { return f.Name }},
			{Title: "Code", Value: func(f field.SubField) string { return f.Code }},
			{Title: "Major field", Value: func(f field.SubField) string { return f.MajorField.Name }},
			activeCol[field.SubField](),
		},
		append(codedFields[:len(codedFields):len(codedFields)],
			FormField{Key: "majorFieldId", Label: "Major field ID", Kind: Number}),
		func() Payload { return new(field.SubInput) },
		func() Payload { return new(field.SubInput) },
		checks,
	)
	return p
}

func FrameworksPage(res *client.Resource[framework.Framework], checks Validation) Page {
	p, _ := crudPage(
		"Frameworks", res, framework.Schema().Listing,
		[]Column[framework.Framework]{
			{Title: "Name", Value: func(f framework.Framework) string { return f.Name }},
			{Title: "Level", Value: func(f framework.Framework) string { return strconv.Itoa(f.Level) }},
			{Title: "Type", Value: func(f framework.Framework) string { return f.Type }},
			activeCol[framework.Framework](),
		},
		[]FormField{
			{Key: "name", Label: "Name"},
			{Key: "description", Label: "Description"},
			{Key: "level", Label: "Level (1-10)", Kind: Number},
			{Key: "type", Label: "Type"},
		},
		func() Payload { return new(framework.Input) },
		func() Payload { return new(framework.Input) },
		checks,
	)
	return p
}
