package store

import (
	"sort"
	"strings"
	"time"
)

// ScalarKind identifies which field of a Scalar is set.
type ScalarKind int

// Scalar kinds.
const (
	KindString ScalarKind = iota
	KindNumber
	KindBool
	KindTime
)

// Scalar is a normalized extraction result. Callers receive it together with
// an ok flag; absence is always reported through the flag, never through a
// zero value, so "zero" and "unknown" stay distinguishable.
type Scalar struct {
	Kind ScalarKind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// Lookup finds a property by name or alias: an exact match wins, then a
// case-insensitive exact match, then substring containment (either way).
// Substring ties are broken by sorted property name so repeated runs against
// the same record resolve to the same property.
func Lookup(rec Record, name string) (Value, bool) {
	if name == "" {
		return Value{}, false
	}
	if v, ok := rec.Properties[name]; ok {
		return v, true
	}

	lower := strings.ToLower(name)
	names := make([]string, 0, len(rec.Properties))
	for k := range rec.Properties {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		if strings.ToLower(k) == lower {
			return rec.Properties[k], true
		}
	}
	for _, k := range names {
		kl := strings.ToLower(k)
		if strings.Contains(kl, lower) || strings.Contains(lower, kl) {
			return rec.Properties[k], true
		}
	}
	return Value{}, false
}

// Extract resolves a property by name and unwraps its payload into a Scalar.
// The switch covers every PropType; malformed or empty payloads report
// absence instead of a default.
func Extract(rec Record, name string) (Scalar, bool) {
	v, ok := Lookup(rec, name)
	if !ok {
		return Scalar{}, false
	}
	return unwrap(v)
}

func unwrap(v Value) (Scalar, bool) {
	switch v.Type {
	case TypeTitle:
		return joinSpans(v.Title)
	case TypeRichText:
		return joinSpans(v.RichText)
	case TypeCheckbox:
		if v.Checkbox == nil {
			return Scalar{}, false
		}
		return Scalar{Kind: KindBool, Bool: *v.Checkbox}, true
	case TypeSelect:
		if v.Select == nil || v.Select.Name == "" {
			return Scalar{}, false
		}
		return Scalar{Kind: KindString, Str: v.Select.Name}, true
	case TypeDate:
		if v.Date == nil {
			return Scalar{}, false
		}
		return dateScalar(*v.Date)
	case TypeFormula:
		if v.Formula == nil {
			return Scalar{}, false
		}
		return unwrapFormula(*v.Formula)
	case TypeRollup:
		if v.Rollup == nil {
			return Scalar{}, false
		}
		return unwrapRollup(*v.Rollup)
	case TypeRelation:
		// Relations are list-valued; see RelationIDs.
		return Scalar{}, false
	case TypeNumber:
		if v.Number == nil {
			return Scalar{}, false
		}
		return Scalar{Kind: KindNumber, Num: *v.Number}, true
	default:
		return Scalar{}, false
	}
}

func unwrapFormula(f Formula) (Scalar, bool) {
	switch {
	case f.String != nil:
		return Scalar{Kind: KindString, Str: *f.String}, true
	case f.Number != nil:
		return Scalar{Kind: KindNumber, Num: *f.Number}, true
	case f.Boolean != nil:
		return Scalar{Kind: KindBool, Bool: *f.Boolean}, true
	case f.Date != nil:
		return dateScalar(*f.Date)
	default:
		return Scalar{}, false
	}
}

// unwrapRollup reduces a rollup to its number, or to the element count when
// the upstream aggregation produced an array.
func unwrapRollup(r Rollup) (Scalar, bool) {
	if r.Number != nil {
		return Scalar{Kind: KindNumber, Num: *r.Number}, true
	}
	if r.Array != nil {
		return Scalar{Kind: KindNumber, Num: float64(len(r.Array))}, true
	}
	return Scalar{}, false
}

func joinSpans(spans []TextSpan) (Scalar, bool) {
	if len(spans) == 0 {
		return Scalar{}, false
	}
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return Scalar{Kind: KindString, Str: b.String()}, true
}

func dateScalar(d Date) (Scalar, bool) {
	t, ok := ParseDate(d.Start)
	if !ok {
		return Scalar{}, false
	}
	return Scalar{Kind: KindTime, Time: t}, true
}

// ParseDate parses the date representations the store emits: a plain date or
// an RFC 3339 timestamp with or without an offset.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Title returns the record's display title: the named property when it is a
// title, otherwise the first title-typed property in name order, otherwise a
// placeholder.
func Title(rec Record, name string) string {
	if v, ok := Lookup(rec, name); ok && v.Type == TypeTitle {
		if s, ok := joinSpans(v.Title); ok {
			return s.Str
		}
	}
	names := make([]string, 0, len(rec.Properties))
	for k := range rec.Properties {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := rec.Properties[k]
		if v.Type == TypeTitle {
			if s, ok := joinSpans(v.Title); ok {
				return s.Str
			}
		}
	}
	return "Untitled"
}

// Checkbox extracts a boolean property.
func Checkbox(rec Record, name string) (bool, bool) {
	s, ok := Extract(rec, name)
	if !ok || s.Kind != KindBool {
		return false, false
	}
	return s.Bool, true
}

// SelectName extracts a select label.
func SelectName(rec Record, name string) (string, bool) {
	v, ok := Lookup(rec, name)
	if !ok || v.Type != TypeSelect || v.Select == nil || v.Select.Name == "" {
		return "", false
	}
	return v.Select.Name, true
}

// DateStart extracts the start of a date property.
func DateStart(rec Record, name string) (time.Time, bool) {
	s, ok := Extract(rec, name)
	if !ok || s.Kind != KindTime {
		return time.Time{}, false
	}
	return s.Time, true
}

// Number extracts a numeric property, whether stored as a number, a numeric
// formula, or a rollup.
func Number(rec Record, name string) (float64, bool) {
	s, ok := Extract(rec, name)
	if !ok || s.Kind != KindNumber {
		return 0, false
	}
	return s.Num, true
}

// Text extracts concatenated plain text from a rich-text or title property.
func Text(rec Record, name string) (string, bool) {
	s, ok := Extract(rec, name)
	if !ok || s.Kind != KindString {
		return "", false
	}
	return s.Str, true
}

// RelationIDs extracts the referenced record ids of a relation property.
// A missing or non-relation property yields nil.
func RelationIDs(rec Record, name string) []string {
	v, ok := Lookup(rec, name)
	if !ok || v.Type != TypeRelation {
		return nil
	}
	ids := make([]string, 0, len(v.Relation))
	for _, r := range v.Relation {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}
