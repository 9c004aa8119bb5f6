package catalog

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultImportCategory receives list members that arrive by value in a
// snapshot and match no known item. YouTube urls go to CategoryYouTube
// instead.
const DefaultImportCategory = CategoryMovies

// Export returns every list and every category bucket.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	lists, err := s.ListLists(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Lists:        make([]SnapshotList, 0, len(lists)),
		Categories:   make(map[string][]SnapshotItem, len(Categories())),
		ExportDate:   Timestamp{s.timestamp()},
		AddonVersion: s.addonVersion,
	}
	for _, l := range lists {
		snap.Lists = append(snap.Lists, snapshotList(l))
	}
	for _, c := range Categories() {
		items, err := s.items.ListItems(ctx, ItemFilter{Category: c})
		if err != nil {
			return nil, err
		}
		bucket := make([]SnapshotItem, 0, len(items))
		for _, it := range items {
			bucket = append(bucket, SnapshotItem(it))
		}
		snap.Categories[c] = bucket
	}
	return snap, nil
}

// Import merges snap into the catalog. Items are re-created under fresh ids
// and deduplicated by url within their category. Lists are always created
// anew with the imported suffix and reference the re-created items. List
// members given by value are matched by url against the snapshot and the
// catalog, and created under DefaultImportCategory when nothing matches.
// The returned count is lists plus newly created items.
func (s *Service) Import(ctx context.Context, snap *Snapshot) (int, error) {
	if snap == nil {
		return 0, invalid("snapshot", "must not be empty")
	}

	r := &importRun{
		svc:   s,
		idMap: make(map[string]string),
		byURL: make(map[string]string),
	}

	for _, category := range Categories() {
		for _, src := range snap.Categories[category] {
			if _, err := r.item(ctx, category, MediaItem(src)); err != nil {
				return r.imported, err
			}
		}
	}
	for category := range snap.Categories {
		if !ValidCategory(category) {
			s.log.WithField("category", category).Warn("import: skipping unknown category")
		}
	}

	for _, src := range snap.Lists {
		name := strings.TrimSpace(src.Name)
		if name == "" {
			name = "Untitled"
		}
		l, err := s.CreateList(ctx, name+importedSuffix, src.Description)
		if err != nil {
			return r.imported, err
		}
		r.imported++
		for _, entry := range src.Items {
			newID, err := r.resolve(ctx, entry)
			if err != nil {
				return r.imported, err
			}
			if newID == "" {
				continue
			}
			if _, err := s.lists.AppendItem(ctx, l.ID, newID); err != nil {
				return r.imported, err
			}
		}
	}

	s.publish(ctx, EventCatalogImported, map[string]int{"imported": r.imported})
	return r.imported, nil
}

// importRun tracks where snapshot items ended up during one Import.
type importRun struct {
	svc      *Service
	idMap    map[string]string // snapshot id -> catalog id
	byURL    map[string]string // url -> catalog id
	imported int
}

func (r *importRun) item(ctx context.Context, category string, src MediaItem) (string, error) {
	newID, created, err := r.svc.importItem(ctx, category, src)
	if err != nil || newID == "" {
		return "", err
	}
	if src.ID != "" {
		r.idMap[src.ID] = newID
	}
	if u := strings.TrimSpace(src.URL); u != "" {
		if _, seen := r.byURL[u]; !seen {
			r.byURL[u] = newID
		}
	}
	if created {
		r.imported++
	}
	return newID, nil
}

// resolve maps a list entry to a catalog id, or "" when it names nothing
// usable.
func (r *importRun) resolve(ctx context.Context, entry ListEntry) (string, error) {
	if entry.Item == nil {
		return r.idMap[entry.ID], nil
	}
	src := MediaItem(*entry.Item)
	if id, ok := r.idMap[src.ID]; ok && src.ID != "" {
		return id, nil
	}
	u := strings.TrimSpace(src.URL)
	if u == "" {
		return "", nil
	}
	if id, ok := r.byURL[u]; ok {
		return id, nil
	}

	existing, err := r.svc.findByURL(ctx, src.Category, u)
	if err != nil {
		return "", err
	}
	if existing != nil {
		r.byURL[u] = existing.ID
		return existing.ID, nil
	}

	category := DefaultImportCategory
	if IsYouTubeURL(u) {
		category = CategoryYouTube
	}
	return r.item(ctx, category, src)
}

// findByURL looks for url in every category, trying preferred first.
func (s *Service) findByURL(ctx context.Context, preferred, url string) (*MediaItem, error) {
	order := Categories()
	if p := strings.ToLower(strings.TrimSpace(preferred)); ValidCategory(p) {
		order = append([]string{p}, order...)
	}
	for _, c := range order {
		it, err := s.items.FindItemByURL(ctx, c, url)
		if err == nil {
			return it, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, nil
}

// importItem returns the id the item lives under after import, or "" when
// the source record is unusable.
func (s *Service) importItem(ctx context.Context, category string, src MediaItem) (string, bool, error) {
	in := CreateItemInput{
		Title:       src.Title,
		URL:         src.URL,
		MediaType:   src.MediaType,
		Category:    category,
		Thumbnail:   src.Thumbnail,
		Description: src.Description,
	}
	if in.MediaType == "" {
		in.MediaType = MediaTypeDirectLink
		if IsYouTubeURL(in.URL) {
			in.MediaType = MediaTypeYouTube
		}
	}
	if err := validateItemInput(&in); err != nil {
		s.log.WithFields(logrus.Fields{
			"url":   src.URL,
			"error": err,
		}).Warn("import: skipping invalid item")
		return "", false, nil
	}

	createdAt := src.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.timestamp()
	}
	item := &MediaItem{
		ID:          s.newID(),
		Title:       in.Title,
		URL:         in.URL,
		MediaType:   in.MediaType,
		Category:    in.Category,
		Thumbnail:   nonEmpty(in.Thumbnail),
		Description: nonEmpty(in.Description),
		Duration:    src.Duration,
		Quality:     nonEmpty(src.Quality),
		CreatedAt:   createdAt.UTC(),
	}
	stored, created, err := s.items.InsertItem(ctx, item)
	if err != nil {
		return "", false, err
	}
	return stored.ID, created, nil
}
