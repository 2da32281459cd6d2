package triage

import "github.com/bassamadnan/triage/backend"

// ListPage is the state of the email list view for one mount.
type ListPage struct {
	emails    []backend.Email
	selection *Selection
	fetching  bool
	deleting  bool
	loaded    bool
	lastErr   error
}

func NewListPage() *ListPage {
	return &ListPage{emails: []backend.Email{}, selection: NewSelection()}
}

// Emails returns the displayed snapshot. Callers must not modify it.
func (p *ListPage) Emails() []backend.Email { return p.emails }

func (p *ListPage) Len() int { return len(p.emails) }

// Email returns the email at index i.
func (p *ListPage) Email(i int) (backend.Email, bool) {
	if i < 0 || i >= len(p.emails) {
		return backend.Email{}, false
	}
	return p.emails[i], true
}

func (p *ListPage) Selection() *Selection { return p.selection }

func (p *ListPage) Fetching() bool { return p.fetching }

func (p *ListPage) Deleting() bool { return p.deleting }

// Loaded reports whether at least one fetch has completed.
func (p *ListPage) Loaded() bool { return p.loaded }

// Err is the error of the last fetch, if it failed.
func (p *ListPage) Err() error { return p.lastErr }

// BeginFetch marks a fetch as outstanding. It returns false when one is
// already pending, in which case the caller must not issue another.
func (p *ListPage) BeginFetch() bool {
	if p.fetching {
		return false
	}
	p.fetching = true
	return true
}

// FetchDone replaces the snapshot with the fetch outcome. On error the list
// becomes empty rather than keeping stale data.
func (p *ListPage) FetchDone(emails []backend.Email, err error) {
	p.fetching = false
	p.loaded = true
	p.lastErr = err
	if err != nil || emails == nil {
		p.emails = []backend.Email{}
	} else {
		p.emails = emails
	}
	p.selection.Retain(p.emails)
}

// Toggle flips the checkbox of id. Identifiers not on display are ignored.
func (p *ListPage) Toggle(id backend.ID) bool {
	for _, e := range p.emails {
		if e.ID == id {
			return p.selection.Toggle(id)
		}
	}
	return false
}

// CanDelete reports whether the delete action is enabled.
func (p *ListPage) CanDelete() bool { return p.selection.Len() > 0 }

// BeginDelete returns the identifiers to delete. ok is false when delete is
// disabled or a delete is already in flight.
func (p *ListPage) BeginDelete() (ids []backend.ID, ok bool) {
	if !p.CanDelete() || p.deleting {
		return nil, false
	}
	p.deleting = true
	return p.selection.IDs(), true
}

// DeleteDone records the delete outcome. On success the selection is cleared
// and the caller should re-fetch; on failure nothing changes.
func (p *ListPage) DeleteDone(err error) (refetch bool) {
	p.deleting = false
	if err != nil {
		return false
	}
	p.selection.Clear()
	return true
}
