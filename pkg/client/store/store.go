// Package store keeps a client-side view of issue lists. Every command
// returns a fresh Snapshot; a snapshot is never modified after it is handed
// out.
package store

import (
	"context"
	"sync"

	"github.com/frahmantamala/campus-fixit/pkg/client"
)

// IssueAPI is the subset of client.Client the store drives.
type IssueAPI interface {
	MyIssues(ctx context.Context, f client.Filters) ([]client.Issue, error)
	AllIssues(ctx context.Context, f client.Filters) ([]client.Issue, error)
	CreateIssue(ctx context.Context, in client.NewIssue) (*client.Issue, error)
	UpdateStatus(ctx context.Context, id, status string) (*client.Issue, error)
	AddRemark(ctx context.Context, id, text string) (*client.Issue, error)
}

type Snapshot struct {
	Items   []client.Issue
	Filters client.Filters
	// Err is the failure of the command that produced this snapshot.
	Err error
}

// Find returns the item with id.
func (s Snapshot) Find(id string) (client.Issue, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return client.Issue{}, false
}

type IssueStore struct {
	api   IssueAPI
	admin bool

	// mu serialises commands so each one starts from the previous result.
	mu      sync.Mutex
	current Snapshot
}

// New builds a store. admin selects the all-issues list over the caller's own.
func New(api IssueAPI, admin bool) *IssueStore {
	return &IssueStore{api: api, admin: admin, current: Snapshot{Items: []client.Issue{}}}
}

func (s *IssueStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Fetch reloads the list with the current filters.
func (s *IssueStore) Fetch(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		items []client.Issue
		err   error
	)
	if s.admin {
		items, err = s.api.AllIssues(ctx, s.current.Filters)
	} else {
		items, err = s.api.MyIssues(ctx, s.current.Filters)
	}
	if err != nil {
		return s.fail(err)
	}
	return s.commit(Snapshot{Items: append([]client.Issue{}, items...), Filters: s.current.Filters})
}

// Create prepends the new issue.
func (s *IssueStore) Create(ctx context.Context, in client.NewIssue) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.api.CreateIssue(ctx, in)
	if err != nil {
		return s.fail(err)
	}
	items := make([]client.Issue, 0, len(s.current.Items)+1)
	items = append(items, *created)
	items = append(items, s.current.Items...)
	return s.commit(Snapshot{Items: items, Filters: s.current.Filters})
}

func (s *IssueStore) UpdateStatus(ctx context.Context, id, status string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.api.UpdateStatus(ctx, id, status)
	if err != nil {
		return s.fail(err)
	}
	return s.commit(s.replaced(*updated))
}

func (s *IssueStore) AddRemark(ctx context.Context, id, text string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.api.AddRemark(ctx, id, text)
	if err != nil {
		return s.fail(err)
	}
	return s.commit(s.replaced(*updated))
}

// SetFilters changes the filters used by the next Fetch. Items are kept.
func (s *IssueStore) SetFilters(f client.Filters) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(Snapshot{Items: s.current.Items, Filters: f, Err: s.current.Err})
}

func (s *IssueStore) ClearFilters() Snapshot {
	return s.SetFilters(client.Filters{})
}

// replaced swaps the item with the same id. An id not in the list is left
// out; it does not match the current filters' view.
func (s *IssueStore) replaced(updated client.Issue) Snapshot {
	items := make([]client.Issue, len(s.current.Items))
	copy(items, s.current.Items)
	for i := range items {
		if items[i].ID == updated.ID {
			items[i] = updated
		}
	}
	return Snapshot{Items: items, Filters: s.current.Filters}
}

func (s *IssueStore) fail(err error) Snapshot {
	return s.commit(Snapshot{Items: s.current.Items, Filters: s.current.Filters, Err: err})
}

func (s *IssueStore) commit(next Snapshot) Snapshot {
	s.current = next
	return next
}
