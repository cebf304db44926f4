package notion

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Property types understood by the accessors.
const (
	PropertyTitle       = "title"
	PropertyRichText    = "rich_text"
	PropertyStatus      = "status"
	PropertySelect      = "select"
	PropertyMultiSelect = "multi_select"
	PropertyDate        = "date"
)

// Page is a database row.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
	Archived       bool                `json:"archived"`
	InTrash        bool                `json:"in_trash"`
	URL            string              `json:"url"`
	Properties     map[string]Property `json:"properties"`
}

// Property is a single page property value. Only the field matching Type is set.
type Property struct {
	ID          string        `json:"id,omitempty"`
	Type        string        `json:"type"`
	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	Status      *SelectValue  `json:"status,omitempty"`
	Select      *SelectValue  `json:"select,omitempty"`
	MultiSelect []SelectValue `json:"multi_select,omitempty"`
	Date        *DateValue    `json:"date,omitempty"`
}

// RichText is one rich text fragment.
type RichText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text"`
	Href      string `json:"href,omitempty"`
}

// SelectValue is a select, multi-select or status option.
type SelectValue struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date property. Start may be a date or a date-time.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// PlainText concatenates the fragments.
func PlainText(fragments []RichText) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.PlainText)
	}
	return b.String()
}

func (p *Page) property(name, typ string) (Property, error) {
	prop, ok := p.Properties[name]
	if !ok {
		return Property{}, errors.Join(ErrPropertyMissing, fmt.Errorf("page %s: %q", p.ID, name))
	}
	if prop.Type != typ {
		return Property{}, errors.Join(ErrPropertyType, fmt.Errorf("page %s: %q is %s, want %s", p.ID, name, prop.Type, typ))
	}
	return prop, nil
}

// PlainTitle returns the plain text of the title property name.
// An empty title is not an error.
func (p *Page) PlainTitle(name string) (string, error) {
	prop, err := p.property(name, PropertyTitle)
	if err != nil {
		return "", err
	}
	return PlainText(prop.Title), nil
}

// StatusName returns the selected option of a status property,
// or "" when none is selected.
func (p *Page) StatusName(name string) (string, error) {
	prop, err := p.property(name, PropertyStatus)
	if err != nil {
		return "", err
	}
	if prop.Status == nil {
		return "", nil
	}
	return prop.Status.Name, nil
}

// DateStart returns the start of a date property. The zero time and a nil
// error are returned when the date is unset.
func (p *Page) DateStart(name string) (time.Time, error) {
	prop, err := p.property(name, PropertyDate)
	if err != nil {
		return time.Time{}, err
	}
	if prop.Date == nil || prop.Date.Start == "" {
		return time.Time{}, nil
	}
	return parseDate(prop.Date.Start)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Join(ErrPropertyType, fmt.Errorf("parse date %q: %w", s, err))
	}
	return t, nil
}

// Sort directions.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
)

// Query is the body of a database query.
type Query struct {
	Filter *Filter `json:"filter,omitempty"`
	Sorts  []Sort  `json:"sorts,omitempty"`
}

// Filter is a single property filter.
type Filter struct {
	Property string           `json:"property"`
	Status   *StatusCondition `json:"status,omitempty"`
	Select   *StatusCondition `json:"select,omitempty"`
}

// StatusCondition matches a status or select option by name.
type StatusCondition struct {
	Equals       string `json:"equals,omitempty"`
	DoesNotEqual string `json:"does_not_equal,omitempty"`
}

// Sort orders query results by a property.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

type queryRequest struct {
	Query
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}
