package protocol

import "time"

// Embed is a rich message embed. Build one with NewEmbed and the chained
// setters; all fields are optional.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// NewEmbed returns an empty embed ready for chaining.
func NewEmbed() *Embed { return &Embed{} }

func (e *Embed) WithTitle(title string) *Embed {
	e.Title = title
	return e
}

func (e *Embed) WithDescription(desc string) *Embed {
	e.Description = desc
	return e
}

func (e *Embed) WithColor(color int) *Embed {
	e.Color = color
	return e
}

func (e *Embed) WithFooter(text string) *Embed {
	e.Footer = &EmbedFooter{Text: text}
	return e
}

func (e *Embed) WithTimestamp(t time.Time) *Embed {
	e.Timestamp = t.UTC().Format(time.RFC3339)
	return e
}

// AddField appends a non-inline field.
func (e *Embed) AddField(name, value string) *Embed {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value})
	return e
}

// AddInlineField appends an inline field.
func (e *Embed) AddInlineField(name, value string) *Embed {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: true})
	return e
}
