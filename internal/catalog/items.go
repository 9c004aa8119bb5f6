package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// CreateItem validates in, enriches YouTube-class URLs and stores the item.
// When an item with the same category and url already exists it is returned
// unchanged with created=false.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (*MediaItem, bool, error) {
	if err := validateItemInput(&in); err != nil {
		return nil, false, err
	}

	existing, err := s.items.FindItemByURL(ctx, in.Category, in.URL)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	item := &MediaItem{
		ID:          s.newID(),
		Title:       in.Title,
		URL:         in.URL,
		MediaType:   in.MediaType,
		Category:    in.Category,
		Thumbnail:   nonEmpty(in.Thumbnail),
		Description: nonEmpty(in.Description),
		CreatedAt:   s.timestamp(),
	}

	if IsYouTubeURL(item.URL) {
		if err := s.enrich(ctx, item); err != nil {
			s.log.WithFields(logrus.Fields{
				"url":   item.URL,
				"error": err,
			}).Warn("metadata enrichment failed")
		}
	}

	stored, created, err := s.items.InsertItem(ctx, item)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.publish(ctx, EventItemCreated, stored)
	}
	return stored, created, nil
}

// enrich fills optional fields from the extractor. It holds no store lock
// and is bounded by the enrichment timeout.
func (s *Service) enrich(ctx context.Context, item *MediaItem) error {
	if s.extractor == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
	defer cancel()

	meta, err := s.extractor.FetchMetadata(ctx, item.URL)
	if err != nil {
		return &EnrichmentError{URL: item.URL, Err: err}
	}
	if meta == nil {
		return nil
	}

	if meta.Description != "" {
		d := truncateRunes(meta.Description, MaxDescriptionLen)
		item.Description = &d
	}
	if meta.Thumbnail != "" {
		t := meta.Thumbnail
		item.Thumbnail = &t
	}
	if meta.Duration > 0 {
		d := meta.Duration
		item.Duration = &d
	}
	if meta.Quality != "" {
		q := meta.Quality
		item.Quality = &q
	}
	return nil
}

// ListItems returns items matching f in insertion order, capped at
// MaxListResults.
func (s *Service) ListItems(ctx context.Context, f ItemFilter) ([]MediaItem, error) {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.MediaType = strings.ToLower(strings.TrimSpace(f.MediaType))
	if f.Limit <= 0 || f.Limit > MaxListResults {
		f.Limit = MaxListResults
	}
	items, err := s.items.ListItems(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []MediaItem{}
	}
	if len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*MediaItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, notFound("media item", id)
	}
	return s.items.GetItem(ctx, id)
}

// DeleteItem removes the item. Lists referencing it are left untouched.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return notFound("media item", id)
	}
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventItemDeleted, map[string]string{"id": id})
	return nil
}

// RemoveFromCategory deletes the item filed under category with the given url.
func (s *Service) RemoveFromCategory(ctx context.Context, category, url string) error {
	category = strings.ToLower(strings.TrimSpace(category))
	if !ValidCategory(category) {
		return invalid("category", "must be one of "+strings.Join(Categories(), ", "))
	}
	if err := s.items.DeleteItemByURL(ctx, category, url); err != nil {
		return err
	}
	s.publish(ctx, EventItemDeleted, map[string]string{"category": category, "url": url})
	return nil
}

// CategoryStats returns a count for every canonical category, zero-filled.
func (s *Service) CategoryStats(ctx context.Context) (map[string]int, error) {
	counts, err := s.items.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(Categories()))
	for _, c := range Categories() {
		out[c] = counts[c]
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.items.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}
	ls, err := s.ListsStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalMediaItems:  total,
		TotalCustomLists: ls.TotalLists,
		TotalListEntries: ls.TotalItems,
		Categories:       cats,
	}, nil
}

// SearchItems matches query case-insensitively against title and
// description. An empty categories slice searches every category.
func (s *Service) SearchItems(ctx context.Context, query string, categories []string) ([]MediaItem, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []MediaItem{}, nil
	}
	if len(categories) == 0 {
		categories = Categories()
	}

	out := []MediaItem{}
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if !ValidCategory(c) {
			continue
		}
		items, err := s.items.ListItems(ctx, ItemFilter{Category: c, Limit: MaxListResults})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if matches(it, q) {
				out = append(out, it)
				if len(out) >= MaxListResults {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func matches(it MediaItem, q string) bool {
	if strings.Contains(strings.ToLower(it.Title), q) {
		return true
	}
	return it.Description != nil && strings.Contains(strings.ToLower(*it.Description), q)
}

func nonEmpty(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
