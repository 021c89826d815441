package calendar

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Field names reported in Document.Misses.
const (
	FieldSpecialistName = "specialist_name"
	FieldLocation       = "location"
	FieldAddress        = "address"
	FieldPhone          = "phone"
	FieldDays           = "days"
	FieldDayDate        = "day_date"
)

const takenSelector = "s, del, strike, .taken"

var (
	timePattern = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Document is everything the extractor could read from one page. Fields
// that were not found are left empty and named in Misses.
type Document struct {
	SpecialistName string
	Location       string
	Address        string
	Phone          string
	PrevWeekStart  string
	NextWeekStart  string
	Days           []DaySchedule
	Misses         []string
}

// Extractor reads portal calendar pages. Relative booking links are
// resolved against base when it is set.
type Extractor struct {
	base *url.URL
}

// NewExtractor returns an extractor resolving links against base (may be nil).
func NewExtractor(base *url.URL) *Extractor {
	return &Extractor{base: base}
}

// Extract parses page markup. It never fails: markup it cannot read
// degrades to empty values.
func (e *Extractor) Extract(page string) Document {
	var doc Document

	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		doc.Days = []DaySchedule{}
		doc.Misses = []string{FieldSpecialistName, FieldLocation, FieldAddress, FieldPhone, FieldDays}
		return doc
	}
	dom := goquery.NewDocumentFromNode(root)

	doc.SpecialistName = e.text(&doc, dom, FieldSpecialistName, ".specialist-name", ".specialist-header h1")
	doc.Location = e.text(&doc, dom, FieldLocation, ".specialist-location", ".specialist-header .location")
	doc.Address = e.text(&doc, dom, FieldAddress, ".contact .address", "address")
	doc.Phone = e.phone(&doc, dom)
	doc.PrevWeekStart = cursor(dom, ".prev-week")
	doc.NextWeekStart = cursor(dom, ".next-week")
	doc.Days = e.days(&doc, dom)

	return doc
}

func (e *Extractor) text(doc *Document, dom *goquery.Document, field string, selectors ...string) string {
	for _, sel := range selectors {
		if v := cleanText(dom.Find(sel).First().Text()); v != "" {
			return v
		}
	}
	doc.Misses = append(doc.Misses, field)
	return ""
}

func (e *Extractor) phone(doc *Document, dom *goquery.Document) string {
	if v := cleanText(dom.Find(".contact .phone, .phone").First().Text()); v != "" {
		return v
	}
	if href, ok := dom.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
		if v := strings.TrimSpace(strings.TrimPrefix(href, "tel:")); v != "" {
			return v
		}
	}
	doc.Misses = append(doc.Misses, FieldPhone)
	return ""
}

// cursor reads the data-week-start of a navigation control. A missing or
// disabled control means that direction is unavailable.
func cursor(dom *goquery.Document, selector string) string {
	ctrl := dom.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		_, ok := s.Attr("data-week-start")
		return ok && !s.HasClass("disabled")
	}).First()
	v, _ := ctrl.Attr("data-week-start")
	v = strings.TrimSpace(v)
	if !datePattern.MatchString(v) {
		return ""
	}
	return datePattern.FindString(v)
}

type dayHeader struct {
	name string
	date string
}

func (e *Extractor) days(doc *Document, dom *goquery.Document) []DaySchedule {
	table := dom.Find("table.calendar").First()
	head := headerRow(table)
	headers := headersOf(head)
	if len(headers) == 0 {
		doc.Misses = append(doc.Misses, FieldDays)
		return []DaySchedule{}
	}

	rows := table.Find("tbody tr")
	if head.ParentsFiltered("thead").Length() == 0 {
		rows = table.Find("tr").NotSelection(head)
	}

	cells := make([]*goquery.Selection, len(headers))
	rows.Each(func(_ int, row *goquery.Selection) {
		row.Children().Filter("td, th").Each(func(i int, cell *goquery.Selection) {
			// cells beyond the last header belong to no day
			if i >= len(headers) {
				return
			}
			if cells[i] == nil {
				cells[i] = cell
			} else {
				cells[i] = cells[i].AddSelection(cell)
			}
		})
	})

	days := make([]DaySchedule, 0, len(headers))
	missingDate := false
	for i, h := range headers {
		if h.date == "" {
			// spacer columns (time labels) have neither name nor date
			if h.name != "" {
				missingDate = true
			}
			continue
		}
		day := DaySchedule{DayName: h.name, Date: h.date, Slots: []TimeSlot{}}
		if cells[i] != nil {
			day.Slots = e.slots(cells[i])
		}
		days = append(days, day)
	}
	if missingDate {
		doc.Misses = append(doc.Misses, FieldDayDate)
	}
	return days
}

// headerRow is the first thead row. Tables without a thead get the first row
// made only of th cells, or failing that the first row carrying ISO dates.
func headerRow(table *goquery.Selection) *goquery.Selection {
	if row := table.Find("thead tr").First(); row.Length() > 0 {
		return row
	}
	rows := table.Find("tr")
	if row := rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Children().Filter("th, td")
		return cells.Length() > 0 && cells.Length() == cells.Filter("th").Length()
	}).First(); row.Length() > 0 {
		return row
	}
	return rows.FilterFunction(func(_ int, tr *goquery.Selection) bool {
		dated := false
		tr.Children().Filter("th, td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			dated = parseHeader(cell).date != ""
			return !dated
		})
		return dated
	}).First()
}

func headersOf(row *goquery.Selection) []dayHeader {
	if row.Length() == 0 {
		return nil
	}
	var headers []dayHeader
	row.Children().Filter("th, td").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, parseHeader(th))
	})
	return headers
}

func parseHeader(th *goquery.Selection) dayHeader {
	var h dayHeader

	if v, ok := th.Attr("data-date"); ok && datePattern.MatchString(v) {
		h.date = datePattern.FindString(v)
	} else if v := datePattern.FindString(th.Find(".date").First().Text()); v != "" {
		h.date = v
	} else {
		h.date = datePattern.FindString(th.Text())
	}

	if v := cleanText(th.Find(".day-name").First().Text()); v != "" {
		h.name = v
	} else {
		h.name = cleanText(datePattern.ReplaceAllString(th.Text(), ""))
	}
	return h
}

// slots collects available entries (links) and taken entries (struck-through
// labels) from a day's cells, merged and ordered by time of day.
func (e *Extractor) slots(cells *goquery.Selection) []TimeSlot {
	var out []TimeSlot

	cells.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if a.ParentsFiltered(takenSelector).Length() > 0 || a.Is(takenSelector) || a.Find(takenSelector).Length() > 0 {
			return
		}
		t, ok := parseTime(a.Text())
		if !ok {
			t, ok = parseTime(a.AttrOr("data-time", ""))
		}
		if !ok {
			return
		}
		link, ok := e.resolve(a.AttrOr("href", ""))
		if !ok {
			return
		}
		out = append(out, TimeSlot{Time: t, Available: true, BookingURL: &link})
	})

	cells.Find(takenSelector).Each(func(_ int, s *goquery.Selection) {
		// nested markers such as <span class="taken"><s>..</s></span> count once
		if s.ParentsFiltered(takenSelector).Length() > 0 {
			return
		}
		if t, ok := parseTime(s.Text()); ok {
			out = append(out, TimeSlot{Time: t, Available: false})
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minutes() < out[j].Minutes()
	})
	if out == nil {
		return []TimeSlot{}
	}
	return out
}

func (e *Extractor) resolve(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if e.base != nil {
		ref = e.base.ResolveReference(ref)
	}
	return ref.String(), true
}

// parseTime returns the first HH:MM in s; for a "09:00 - 09:30" range that
// is the start time.
func parseTime(s string) (string, bool) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if h > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, minute), true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
