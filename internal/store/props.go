package store

import "time"

// Write-side property payload builders. These mirror the shapes the query
// side decodes in value.go.

// TitleProp builds a title property payload.
func TitleProp(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

// CheckboxProp builds a checkbox property payload.
func CheckboxProp(v bool) map[string]any {
	return map[string]any{"checkbox": v}
}

// SelectProp builds a select property payload.
func SelectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

// DateProp builds a date property payload. Midnight values serialize
// date-only; anything else keeps the timestamp.
func DateProp(t time.Time) map[string]any {
	start := t.Format(time.RFC3339)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		start = t.Format(dateLayout)
	}
	return map[string]any{"date": map[string]any{"start": start}}
}
