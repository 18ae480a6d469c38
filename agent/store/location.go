package store

import (
	"bytes"
	"encoding/json"
	"slices"
)

// DayHours is one line of a store's opening hours, e.g. "Sunday" -> "10:00 AM to 6:00 PM".
type DayHours struct {
	Days string `yaml:"days" json:"days"`
	Open string `yaml:"open" json:"open"`
}

// Hours keeps the order the lines were declared in so they read naturally.
// It encodes to JSON as an object whose keys follow that order.
type Hours []DayHours

func (h Hours) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, line := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(line.Days)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(line.Open)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type LocationRecord struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Hours       Hours    `yaml:"hours" json:"hours"`
	Departments []string `yaml:"departments" json:"departments"`
}

func (r LocationRecord) clone() LocationRecord {
	r.Hours = slices.Clone(r.Hours)
	r.Departments = slices.Clone(r.Departments)
	return r
}
