package portal

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Directory is the fixed allow-list of specialists and their portal calendar URLs.
type Directory struct {
	entries map[string]*url.URL
}

// defaultEntries maps catalog specialist ids to their calendar pages.
var defaultEntries = map[string]string{
	"anna-nowak":          "https://kalendarz.optykonline.pl/specjalista/anna-nowak-krakow",
	"piotr-wisniewski":    "https://kalendarz.optykonline.pl/specjalista/piotr-wisniewski-wieliczka",
	"katarzyna-zielinska": "https://kalendarz.optykonline.pl/specjalista/katarzyna-zielinska-krakow",
	"marek-lewandowski":   "https://kalendarz.optykonline.pl/specjalista/marek-lewandowski-krakow",
	"ewa-kaminska":        "https://kalendarz.optykonline.pl/specjalista/ewa-kaminska-krakow",
}

// DefaultDirectory returns the hardcoded production directory.
func DefaultDirectory() *Directory {
	d, err := NewDirectory(defaultEntries)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDirectory validates and indexes id -> absolute http(s) URL entries.
func NewDirectory(entries map[string]string) (*Directory, error) {
	d := &Directory{entries: make(map[string]*url.URL, len(entries))}
	for id, raw := range entries {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("portal: empty specialist id")
		}
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("portal: parse url for %s: %w", id, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("portal: url for %s must be absolute http(s): %q", id, raw)
		}
		d.entries[id] = u
	}
	return d, nil
}

// Lookup returns a copy of the specialist's base URL.
func (d *Directory) Lookup(specialistID string) (*url.URL, error) {
	if d == nil {
		return nil, ErrUnknownSpecialist
	}
	u, ok := d.entries[specialistID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecialist, specialistID)
	}
	clone := *u
	return &clone, nil
}

// Has reports whether the id is on the allow-list.
func (d *Directory) Has(specialistID string) bool {
	_, err := d.Lookup(specialistID)
	return err == nil
}

// Host returns the portal host serving the specialist's calendar.
func (d *Directory) Host(specialistID string) (string, bool) {
	u, err := d.Lookup(specialistID)
	if err != nil {
		return "", false
	}
	return u.Host, true
}

// IDs lists known specialist ids in sorted order.
func (d *Directory) IDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildFetchURL returns the base URL, or the base URL with the portal's week
// navigation parameters appended (ajax=1&date=<weekStart>&d=<direction>).
func BuildFetchURL(base *url.URL, q WeekQuery) string {
	if q.IsZero() {
		return base.String()
	}
	u := *base
	nav := "ajax=1&date=" + url.QueryEscape(q.WeekStart) + "&d=" + url.QueryEscape(string(q.Direction))
	if u.RawQuery == "" {
		u.RawQuery = nav
	} else {
		u.RawQuery = u.RawQuery + "&" + nav
	}
	return u.String()
}
