package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event types published after each successful mutation.
const (
	EventItemCreated     = "media.created"
	EventItemDeleted     = "media.deleted"
	EventListCreated     = "list.created"
	EventListUpdated     = "list.updated"
	EventListDeleted     = "list.deleted"
	EventListItemAdded   = "list.item_added"
	EventListItemRemoved = "list.item_removed"
	EventCatalogImported = "catalog.imported"
)

const (
	DefaultEnrichTimeout = 30 * time.Second
	DefaultAddonVersion  = "2.0.0"
)

// Service implements the item catalog and the custom list manager on top of
// an ItemStore and a ListStore. Both backends (Postgres and the local JSON
// files) share this logic.
type Service struct {
	items     ItemStore
	lists     ListStore
	extractor Extractor
	publisher Publisher
	log       logrus.FieldLogger

	enrichTimeout time.Duration
	addonVersion  string
	now           func() time.Time
	newID         func() string
}

type Option func(*Service)

// WithExtractor enables enrichment of YouTube-class URLs.
func WithExtractor(e Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithEnrichTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.enrichTimeout = d
		}
	}
}

func WithAddonVersion(v string) Option {
	return func(s *Service) {
		if v != "" {
			s.addonVersion = v
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(items ItemStore, lists ListStore, opts ...Option) *Service {
	s := &Service{
		items:         items,
		lists:         lists,
		publisher:     nopPublisher{},
		log:           logrus.StandardLogger(),
		enrichTimeout: DefaultEnrichTimeout,
		addonVersion:  DefaultAddonVersion,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	s.publisher.Publish(ctx, eventType, payload)
}
