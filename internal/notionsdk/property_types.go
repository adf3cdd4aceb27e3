package notionsdk

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// PropertyType tags the variant carried by a PropertyValue.
type PropertyType string

const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertyNumber      PropertyType = "number"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyDate        PropertyType = "date"
	PropertyCheckbox    PropertyType = "checkbox"
)

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// PropertyValue is a closed tagged union over the property kinds the
// workspace API returns on database rows. Unrecognized kinds keep their
// raw JSON so extraction degrades to text instead of failing.
type PropertyValue struct {
	ID   string       `json:"id,omitempty"`
	Type PropertyType `json:"type,omitempty"`

	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`

	raw json.RawMessage
}

// propertyValue mirrors PropertyValue without methods, so UnmarshalJSON
// can decode the known fields without recursing.
type propertyValue PropertyValue

func (p *PropertyValue) UnmarshalJSON(data []byte) error {
	var v propertyValue
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PropertyValue(v)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Scalar extracts the local scalar behind the property. Unknown kinds
// serialize to their raw JSON text rather than failing, so reconciliation
// never crashes on an unexpected remote schema.
func (p *PropertyValue) Scalar() any {
	switch p.Type {
	case PropertyTitle:
		return PlainString(p.Title)
	case PropertyRichText:
		return PlainString(p.RichText)
	case PropertyNumber:
		if p.Number == nil {
			return nil
		}
		return *p.Number
	case PropertySelect:
		if p.Select == nil {
			return nil
		}
		return p.Select.Name
	case PropertyMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, s := range p.MultiSelect {
			names = append(names, s.Name)
		}
		return strings.Join(names, ", ")
	case PropertyDate:
		if p.Date == nil {
			return nil
		}
		return p.Date.Start
	case PropertyCheckbox:
		if p.Checkbox == nil {
			return false
		}
		return *p.Checkbox
	default:
		if len(p.raw) > 0 {
			return string(p.raw)
		}
		return fmt.Sprintf("%v", *p)
	}
}

// Properties is the named property map on a page or database row.
type Properties map[string]PropertyValue

// TitleValue finds the title property of a row, whatever it is named, and
// returns its plain text. New databases name it "Name", workspace pages
// name it "title".
func (p Properties) TitleValue() string {
	for _, v := range p {
		if v.Type == PropertyTitle || len(v.Title) > 0 {
			return PlainString(v.Title)
		}
	}
	return ""
}

// NewTitleProperty builds a title property payload.
func NewTitleProperty(text string) PropertyValue {
	return PropertyValue{Type: PropertyTitle, Title: Text(text)}
}

// NewRichTextProperty builds a rich text property payload.
func NewRichTextProperty(text string) PropertyValue {
	return PropertyValue{Type: PropertyRichText, RichText: Text(text)}
}

// NewNumberProperty builds a number property payload.
func NewNumberProperty(n float64) PropertyValue {
	return PropertyValue{Type: PropertyNumber, Number: &n}
}

// NewSelectProperty builds a select property payload.
func NewSelectProperty(name string) PropertyValue {
	return PropertyValue{Type: PropertySelect, Select: &SelectOption{Name: name}}
}

// NewMultiSelectProperty builds a multi-select property payload.
func NewMultiSelectProperty(names ...string) PropertyValue {
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Name: n})
	}
	return PropertyValue{Type: PropertyMultiSelect, MultiSelect: opts}
}

// NewDateProperty builds a date property payload.
func NewDateProperty(start string) PropertyValue {
	return PropertyValue{Type: PropertyDate, Date: &DateValue{Start: start}}
}

// NewCheckboxProperty builds a checkbox property payload.
func NewCheckboxProperty(checked bool) PropertyValue {
	return PropertyValue{Type: PropertyCheckbox, Checkbox: &checked}
}
