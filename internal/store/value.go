// Package store provides the record-store client and the field extraction
// layer that normalizes its loosely-typed property values.
package store

// PropType tags which payload variant a Value carries.
type PropType string

// Property type tags understood by the extractor.
const (
	TypeTitle    PropType = "title"
	TypeRichText PropType = "rich_text"
	TypeCheckbox PropType = "checkbox"
	TypeSelect   PropType = "select"
	TypeDate     PropType = "date"
	TypeFormula  PropType = "formula"
	TypeRollup   PropType = "rollup"
	TypeRelation PropType = "relation"
	TypeNumber   PropType = "number"
)

// TextSpan is one run of rendered text.
type TextSpan struct {
	PlainText string `json:"plain_text"`
}

// Option is a select label.
type Option struct {
	Name string `json:"name"`
}

// Date is a date or date range. Start may carry a timestamp; the extraction
// layer reduces it to a date where the caller asks for one.
type Date struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Formula is a computed property result, itself tagged by sub-type.
type Formula struct {
	Type    string   `json:"type"`
	String  *string  `json:"string,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
	Date    *Date    `json:"date,omitempty"`
}

// Rollup is an aggregation over related records.
type Rollup struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number,omitempty"`
	Array  []Value  `json:"array,omitempty"`
}

// Relation references another record.
type Relation struct {
	ID string `json:"id"`
}

// Value is the tagged union of property payloads. Exactly one payload field
// is meaningful for a given Type; the others stay zero.
type Value struct {
	Type     PropType   `json:"type"`
	Title    []TextSpan `json:"title,omitempty"`
	RichText []TextSpan `json:"rich_text,omitempty"`
	Checkbox *bool      `json:"checkbox,omitempty"`
	Select   *Option    `json:"select,omitempty"`
	Date     *Date      `json:"date,omitempty"`
	Formula  *Formula   `json:"formula,omitempty"`
	Rollup   *Rollup    `json:"rollup,omitempty"`
	Relation []Relation `json:"relation,omitempty"`
	Number   *float64   `json:"number,omitempty"`
}

// Record is one page of a store database.
type Record struct {
	ID         string           `json:"id"`
	Properties map[string]Value `json:"properties"`
}
