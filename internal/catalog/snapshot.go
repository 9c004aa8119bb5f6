package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Snapshot is the export/import document. Categories maps a category name
// to its items in insertion order.
//
// Decoding is lenient so that files written by the Kodi addon import too:
// list members may be whole item objects instead of ids and timestamps may
// lack a zone.
type Snapshot struct {
	Lists        []SnapshotList            `json:"lists"`
	Categories   map[string][]SnapshotItem `json:"categories"`
	ExportDate   Timestamp                 `json:"export_date"`
	AddonVersion string                    `json:"addon_version"`
}

type SnapshotList struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Items       []ListEntry `json:"items"`
	CreatedAt   Timestamp   `json:"created_at"`
	UpdatedAt   Timestamp   `json:"updated_at"`
}

func snapshotList(l CustomList) SnapshotList {
	entries := make([]ListEntry, 0, len(l.Items))
	for _, id := range l.Items {
		entries = append(entries, ListEntry{ID: id})
	}
	return SnapshotList{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Items:       entries,
		CreatedAt:   Timestamp{l.CreatedAt},
		UpdatedAt:   Timestamp{l.UpdatedAt},
	}
}

// ListEntry is one list member: an item id, or an item carried by value.
type ListEntry struct {
	ID   string
	Item *SnapshotItem
}

func (e ListEntry) MarshalJSON() ([]byte, error) {
	if e.Item != nil {
		return json.Marshal(e.Item)
	}
	return json.Marshal(e.ID)
}

func (e *ListEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &e.ID)
	}
	var it SnapshotItem
	if err := json.Unmarshal(data, &it); err != nil {
		return err
	}
	e.ID = it.ID
	e.Item = &it
	return nil
}

// SnapshotItem is a MediaItem as stored in a snapshot. It also accepts
// added_date for created_at and fractional durations.
type SnapshotItem MediaItem

func (it *SnapshotItem) UnmarshalJSON(data []byte) error {
	type plain MediaItem
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
		AddedDate Timestamp `json:"added_date"`
		Duration  *float64  `json:"duration"`
	}{plain: (*plain)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	it.CreatedAt = aux.CreatedAt.Time
	if it.CreatedAt.IsZero() {
		it.CreatedAt = aux.AddedDate.Time
	}
	it.Duration = nil
	if aux.Duration != nil && *aux.Duration >= 0 {
		d := int(math.Round(*aux.Duration))
		it.Duration = &d
	}
	return nil
}

// Timestamp encodes as RFC 3339 in UTC. It decodes RFC 3339 and zoneless
// ISO 8601, the latter read as UTC; empty or unrecognised values decode to
// the zero time.
type Timestamp struct {
	time.Time
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// numbers and other shapes carry no usable date
		return nil
	}
	t.Time = parseTimestamp(s)
	return nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return v.UTC()
	}
	for _, layout := range zonelessLayouts {
		if v, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return v
		}
	}
	return time.Time{}
}
