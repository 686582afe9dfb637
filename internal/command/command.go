// Package command parses the chat commands the bot accepts.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse errors. All of them are user errors answered with a corrective
// message, never logged as system failures.
var (
	ErrNotCommand = errors.New("not a command")
	ErrUnknown    = errors.New("unknown command")
	ErrBadIndex   = errors.New("bad task index")
	ErrBadFormat  = errors.New("bad command format")
	ErrBadDate    = errors.New("bad date or time")
)

// List requests the weekly task listing.
type List struct{}

// Done marks the task at a 1-based display index complete.
type Done struct {
	Index int
}

// New creates a task.
type New struct {
	Title    string
	Due      time.Time
	Priority string
}

// Command is one of List, Done or New.
type Command any

// Parse interprets a chat message. Supported forms:
//
//	/check
//	/done.<n>
//	/new.<title>.<DDMMYY|DDMMYYYY>[.<HHMM>][.<priority>]
func Parse(text string, loc *time.Location) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil, ErrNotCommand
	}
	lower := strings.ToLower(text)

	switch {
	case lower == "/check":
		return List{}, nil
	case strings.HasPrefix(lower, "/done."):
		return parseDone(text)
	case strings.HasPrefix(lower, "/new."):
		return parseNew(text, loc)
	default:
		return nil, ErrUnknown
	}
}

func parseDone(text string) (Command, error) {
	raw := text[len("/done."):]
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return nil, ErrBadIndex
	}
	return Done{Index: n}, nil
}

func parseNew(text string, loc *time.Location) (Command, error) {
	payload := text[len("/new."):]
	parts := strings.Split(payload, ".")
	if len(parts) < 2 {
		return nil, ErrBadFormat
	}

	title := strings.TrimSpace(parts[0])
	if title == "" {
		return nil, ErrBadFormat
	}

	datePart := strings.TrimSpace(parts[1])
	timePart := "0000"
	if len(parts) >= 3 {
		timePart = strings.TrimSpace(parts[2])
	}
	priority := "low"
	if len(parts) >= 4 {
		priority = strings.ToLower(strings.TrimSpace(parts[3]))
	}

	due, err := parseDue(datePart, timePart, loc)
	if err != nil {
		return nil, err
	}

	return New{Title: title, Due: due, Priority: priority}, nil
}

// parseDue accepts DDMMYY or DDMMYYYY dates and an optional HHMM time.
func parseDue(datePart, timePart string, loc *time.Location) (time.Time, error) {
	var day, month, year int
	switch len(datePart) {
	case 6:
		d, err := atoiAll(datePart[0:2], datePart[2:4], datePart[4:6])
		if err != nil {
			return time.Time{}, ErrBadDate
		}
		day, month, year = d[0], d[1], 2000+d[2]
	case 8:
		d, err := atoiAll(datePart[0:2], datePart[2:4], datePart[4:8])
		if err != nil {
			return time.Time{}, ErrBadDate
		}
		day, month, year = d[0], d[1], d[2]
	default:
		return time.Time{}, ErrBadDate
	}

	hour, minute := 0, 0
	if len(timePart) >= 2 {
		h, err := strconv.Atoi(timePart[0:2])
		if err != nil {
			return time.Time{}, ErrBadDate
		}
		hour = h
	}
	if len(timePart) >= 4 {
		m, err := strconv.Atoi(timePart[2:4])
		if err != nil {
			return time.Time{}, ErrBadDate
		}
		minute = m
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, ErrBadDate
	}
	if loc == nil {
		loc = time.UTC
	}

	due := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// time.Date normalizes overflow (e.g. 31/02 becomes 03/03); reject it.
	if due.Day() != day || due.Month() != time.Month(month) {
		return time.Time{}, ErrBadDate
	}
	return due, nil
}

func atoiAll(parts ...string) ([]int, error) {
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
