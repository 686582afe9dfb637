package store

import "time"

// Filter builders for the store query language. Dates are serialized
// date-only because the selection logic ignores time components.

const dateLayout = "2006-01-02"

// And combines filters conjunctively.
func And(parts ...map[string]any) map[string]any {
	return map[string]any{"and": parts}
}

// Or combines filters disjunctively.
func Or(parts ...map[string]any) map[string]any {
	return map[string]any{"or": parts}
}

// CheckboxEquals matches a checkbox property value.
func CheckboxEquals(prop string, v bool) map[string]any {
	return map[string]any{"property": prop, "checkbox": map[string]any{"equals": v}}
}

// DateBefore matches dates strictly before d.
func DateBefore(prop string, d time.Time) map[string]any {
	return map[string]any{"property": prop, "date": map[string]any{"before": d.Format(dateLayout)}}
}

// DateOnOrBefore matches dates at or before d.
func DateOnOrBefore(prop string, d time.Time) map[string]any {
	return map[string]any{"property": prop, "date": map[string]any{"on_or_before": d.Format(dateLayout)}}
}

// DateBetween matches dates in [from, to].
func DateBetween(prop string, from, to time.Time) map[string]any {
	return map[string]any{"property": prop, "date": map[string]any{
		"on_or_after":  from.Format(dateLayout),
		"on_or_before": to.Format(dateLayout),
	}}
}

// RelationContains matches records whose relation property references id.
func RelationContains(prop, id string) map[string]any {
	return map[string]any{"property": prop, "relation": map[string]any{"contains": id}}
}
