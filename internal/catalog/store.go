package catalog

import "context"

// ItemStore persists MediaItems. Implementations must make InsertItem
// atomic with respect to the (category, url) uniqueness rule.
type ItemStore interface {
	// InsertItem stores item unless an item with the same category and url
	// exists, in which case the existing item is returned with created=false.
	InsertItem(ctx context.Context, item *MediaItem) (stored *MediaItem, created bool, err error)
	FindItemByURL(ctx context.Context, category, url string) (*MediaItem, error)
	GetItem(ctx context.Context, id string) (*MediaItem, error)
	// GetItems returns the items whose ids resolve, in no particular order.
	GetItems(ctx context.Context, ids []string) ([]MediaItem, error)
	ListItems(ctx context.Context, f ItemFilter) ([]MediaItem, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItemByURL(ctx context.Context, category, url string) error
	CountByCategory(ctx context.Context) (map[string]int, error)
	CountItems(ctx context.Context) (int, error)
}

// ListStore persists CustomLists. AppendItem and RemoveItem must be atomic
// set operations on a single list.
type ListStore interface {
	CreateList(ctx context.Context, l *CustomList) error
	GetList(ctx context.Context, id string) (*CustomList, error)
	ListLists(ctx context.Context) ([]CustomList, error)
	UpdateList(ctx context.Context, id string, patch ListPatch) (*CustomList, error)
	DeleteList(ctx context.Context, id string) error
	// AppendItem adds itemID to the end of the list unless already present.
	// added reports whether the list changed.
	AppendItem(ctx context.Context, listID, itemID string) (added bool, err error)
	// RemoveItem fails with ErrNotFound if the list is absent or itemID is
	// not a member.
	RemoveItem(ctx context.Context, listID, itemID string) error
	CountLists(ctx context.Context) (int, error)
}

// Extractor is the external metadata and playback resolution capability.
type Extractor interface {
	FetchMetadata(ctx context.Context, url string) (*Metadata, error)
	// ResolvePlayableURL never fails: it returns url itself when no stream
	// can be resolved.
	ResolvePlayableURL(ctx context.Context, url, quality string) string
	Search(ctx context.Context, query string, maxResults int) ([]Metadata, error)
}

// PlaylistExpander lists the entries of a remote playlist.
type PlaylistExpander interface {
	ExpandPlaylist(ctx context.Context, url string, limit int) (*PlaylistInfo, error)
}

// Publisher receives catalog change events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}
