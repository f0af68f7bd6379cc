package console

import (
	"github.com/trezcool/uniguide/core/user"
)

// Sections lists the pages of each role's dashboard, in sidebar order.
var Sections = map[string][]string{
	user.RoleAdmin: {
		"institutes", "subjects", "news", "events", "tasks",
		"editors", "major-fields", "sub-fields", "frameworks",
	},
	user.RoleManager: {"news", "events", "tasks", "subjects"},
	user.RoleEditor:  {"news"},
}

// Shell is a role's dashboard: a sidebar of pages, the active one,
// and the modal opened from it.
type Shell struct {
	role   string
	pages  []Page
	active int
	modal  Form
	row    int // record routed to the edit modal
}

// NewShell keeps the pages of role's sections, in section order.
func NewShell(role string, pages ...Page) *Shell {
	byName := make(map[string]Page, len(pages))
	for _, p := range pages {
		byName[p.Name()] = p
	}

	s := &Shell{role: role, row: -1}
	for _, name := range Sections[role] {
		if p, ok := byName[name]; ok {
			s.pages = append(s.pages, p)
		}
	}
	return s
}

func (s *Shell) Role() string  { return s.role }
func (s *Shell) Pages() []Page { return s.pages }

// Active returns the mounted page, nil when the role has none.
func (s *Shell) Active() Page {
	if len(s.pages) == 0 {
		return nil
	}
	return s.pages[s.active]
}

// Select mounts the page called name. Open modals are closed.
func (s *Shell) Select(name string) bool {
	for i, p := range s.pages {
		if p.Name() == name {
			s.mount(i)
			return true
		}
	}
	return false
}

func (s *Shell) Next() {
	if len(s.pages) > 0 {
		s.mount((s.active + 1) % len(s.pages))
	}
}

func (s *Shell) Prev() {
	if len(s.pages) > 0 {
		s.mount((s.active - 1 + len(s.pages)) % len(s.pages))
	}
}

func (s *Shell) mount(i int) {
	s.CloseModal()
	s.active = i
}

// Create opens the create modal of the active page.
func (s *Shell) Create() Form {
	p := s.Active()
	if p == nil {
		return nil
	}
	s.modal = p.Create()
	s.row = -1
	return s.modal
}

// Edit routes the record at row of the active page to its edit modal.
func (s *Shell) Edit(row int) (Form, bool) {
	p := s.Active()
	if p == nil {
		return nil, false
	}
	f, ok := p.EditAt(row)
	if !ok {
		return nil, false
	}
	s.modal = f
	s.row = row
	return f, true
}

// Modal returns the open modal, nil when none is open.
func (s *Shell) Modal() Form {
	if s.modal == nil || s.modal.State() == Closed {
		return nil
	}
	return s.modal
}

// Selected returns the row being edited, -1 when none.
func (s *Shell) Selected() int {
	if s.Modal() == nil || !s.modal.IsEdit() {
		return -1
	}
	return s.row
}

func (s *Shell) CloseModal() {
	if s.modal != nil {
		s.modal.Close()
	}
	s.modal = nil
	s.row = -1
}
