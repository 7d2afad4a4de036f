package snaplvm

import (
	"slices"
	"time"

	"github.com/shibukawa/snaplvm/bridge"
	"github.com/shibukawa/snaplvm/parser"
	"github.com/shibukawa/snaplvm/value"
)

type (
	// Settings is the parsing configuration declared by the file header.
	Settings = parser.Settings
	// Degradation is a field kept as a string because its type hint did not match.
	Degradation = parser.Degradation
)

// Document is a parsed LVM file. It is immutable.
type Document struct {
	header       value.Value
	groups       []Group
	dropped      []*GroupError
	degradations []Degradation
	settings     Settings
	tree         value.Value
}

func newDocument(result *parser.Result) *Document {
	groups := make([]Group, 0, len(result.Groups))
	for _, g := range result.Groups {
		groups = append(groups, Group{v: g})
	}

	return &Document{
		header:       result.Header,
		groups:       groups,
		dropped:      result.Dropped,
		degradations: result.Degradations,
		settings:     result.Settings,
		tree: value.Map(
			value.Pair("header", result.Header),
			value.Pair("groups", value.Seq(result.Groups...)),
		),
	}
}

// Header returns the file header as an ordered map. Duplicate keys are kept.
func (d *Document) Header() value.Value {
	return d.header
}

// Groups returns the groups that parsed completely, in file order.
func (d *Document) Groups() []Group {
	return slices.Clone(d.groups)
}

// Dropped returns one error per group left out of the document.
func (d *Document) Dropped() []*GroupError {
	return slices.Clone(d.dropped)
}

// Degradations returns the fields that fell back to strings.
func (d *Document) Degradations() []Degradation {
	return slices.Clone(d.degradations)
}

// Settings returns the file level parsing configuration.
func (d *Document) Settings() Settings {
	return d.settings
}

// Value returns the whole document as {header, groups}.
func (d *Document) Value() value.Value {
	return d.tree
}

// Start combines the Date and Time header keys.
// ok is false when the header carries neither.
func (d *Document) Start() (start time.Time, ok bool) {
	date, clock := d.settings.Date, d.settings.Time
	if date.IsZero() && clock.IsZero() {
		return time.Time{}, false
	}

	if date.IsZero() {
		return clock, true
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC), true
}

// Group is one LVM segment.
type Group struct {
	v value.Value
}

// Header returns the group header. Keys that carry one value per channel are sequences.
func (g Group) Header() value.Value {
	h, _ := g.v.Get("header")
	return h
}

// Channels returns the channels in column order.
func (g Group) Channels() []Channel {
	list, _ := g.v.Get("channels")

	channels := make([]Channel, 0, list.Len())
	for _, ch := range list.Items() {
		channels = append(channels, Channel{v: ch})
	}
	return channels
}

// Channel returns the first channel with the given name.
func (g Group) Channel(name string) (Channel, bool) {
	for _, ch := range g.Channels() {
		if ch.Name() == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// Rows returns the row count shared by all channels.
func (g Group) Rows() int {
	channels := g.Channels()
	if len(channels) == 0 {
		return 0
	}
	return len(channels[0].Values())
}

// Value returns the group as {header, channels}.
func (g Group) Value() value.Value {
	return g.v
}

// Channel is one column of a group.
type Channel struct {
	v value.Value
}

func (c Channel) Name() string {
	n, _ := c.v.Get("name")
	s, _ := n.AsString()
	return s
}

// Properties returns the header values that belong to this channel, and its Unit.
func (c Channel) Properties() value.Value {
	p, _ := c.v.Get("properties")
	return p
}

// Values returns the samples in row order.
func (c Channel) Values() []value.Value {
	list, _ := c.v.Get("values")

	values := make([]value.Value, 0, list.Len())
	for _, v := range list.Items() {
		values = append(values, v)
	}
	return values
}

// Value returns the channel as {name, properties, values}.
func (c Channel) Value() value.Value {
	return c.v
}

// Unmarshal decodes the document tree into target.
// See bridge.Decode for the supported targets.
func Unmarshal(doc *Document, target any) error {
	return bridge.Decode(doc.Value(), target)
}
