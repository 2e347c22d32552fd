package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DueDateOperator selects how a due-date toggle compares task due dates.
type DueDateOperator string

const (
	DueBefore    DueDateOperator = "before"
	DueAfter     DueDateOperator = "after"
	DueBetween   DueDateOperator = "between"
	DueOverdue   DueDateOperator = "overdue"
	DueToday     DueDateOperator = "today"
	DueNext7Days DueDateOperator = "next_7_days"
)

// TagMode selects how a tags toggle inspects a task's tags.
type TagMode string

const (
	TagModeHasAny      TagMode = "has_any"
	TagModeHasNone     TagMode = "has_none"
	TagModeHasSpecific TagMode = "has_specific"
)

// SmartTagCriteria is the persisted form of a smart tag definition. Each
// FilterBy* toggle pairs with its own criteria block; the block of a
// disabled toggle is kept but ignored.
type SmartTagCriteria struct {
	FilterByDueDate bool            `json:"filterByDueDate"`
	DueDate         DueDateCriteria `json:"dueDate"`

	FilterByPriority bool             `json:"filterByPriority"`
	Priority         PriorityCriteria `json:"priority"`

	FilterByStatus bool           `json:"filterByStatus"`
	Status         StatusCriteria `json:"status"`

	FilterByCategory bool             `json:"filterByCategory"`
	Category         CategoryCriteria `json:"category"`

	FilterByTags bool        `json:"filterByTags"`
	Tags         TagCriteria `json:"tags"`

	FilterByTimeEntries bool              `json:"filterByTimeEntries"`
	TimeEntries         TimeEntryCriteria `json:"timeEntries"`

	FilterByAttachments bool               `json:"filterByAttachments"`
	Attachments         AttachmentCriteria `json:"attachments"`

	FilterByCreatedDate bool                `json:"filterByCreatedDate"`
	CreatedDate         CreatedDateCriteria `json:"createdDate"`
}

type DueDateCriteria struct {
	Operator DueDateOperator `json:"operator" validate:"required,oneof=before after between overdue today next_7_days"`
	Value    *Date           `json:"value,omitempty"`
	EndValue *Date           `json:"end_value,omitempty"`
}

type PriorityCriteria struct {
	IncludeHigh   bool `json:"includeHigh"`
	IncludeMedium bool `json:"includeMedium"`
	IncludeLow    bool `json:"includeLow"`
}

type StatusCriteria struct {
	IncludePending    bool `json:"includePending"`
	IncludeInProgress bool `json:"includeInProgress"`
	IncludeCompleted  bool `json:"includeCompleted"`
}

type CategoryCriteria struct {
	CategoryIDs []int `json:"categoryIds" validate:"dive,gt=0"`
}

type TagCriteria struct {
	Mode   TagMode `json:"mode" validate:"required,oneof=has_any has_none has_specific"`
	TagIDs []int   `json:"tagIds" validate:"dive,gt=0"`
}

type TimeEntryCriteria struct {
	HasEntries *bool `json:"hasEntries" validate:"required"`
}

type AttachmentCriteria struct {
	HasAttachments *bool `json:"hasAttachments" validate:"required"`
}

type CreatedDateCriteria struct {
	Start *Date `json:"start"`
	End   *Date `json:"end"`
}

// Value stores the criteria as JSON text; lib/pq sends []byte as bytea,
// which a JSONB column rejects.
func (c SmartTagCriteria) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal smart tag criteria: %w", err)
	}
	return string(b), nil
}

// Scan loads criteria from a JSON/JSONB column.
func (c *SmartTagCriteria) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = SmartTagCriteria{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan smart tag criteria: unsupported type %T", src)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unmarshal smart tag criteria: %w", err)
	}
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day without a clock or zone. It is resolved to an
// instant only against a location, usually the one of the evaluation time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD or RFC 3339; for the latter the date part
// as written is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// Start is midnight of the day in loc.
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays normalizes through time.Date so month and year roll over.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
