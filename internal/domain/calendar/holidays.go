package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const dateLayout = "2006-01-02"

// Holiday is a single public holiday entry.
type Holiday struct {
	Date string `koanf:"date"`
	Name string `koanf:"name"`
}

type holidayDoc struct {
	Holidays []Holiday `koanf:"holidays"`
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civil(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

// HolidaySet is an immutable lookup table of site-specific closure days.
type HolidaySet struct {
	days map[civilDate]string
}

// NewHolidaySet builds a set from entries. Dates use the YYYY-MM-DD layout.
func NewHolidaySet(entries ...Holiday) (*HolidaySet, error) {
	s := &HolidaySet{days: make(map[civilDate]string, len(entries))}
	for _, e := range entries {
		t, err := time.Parse(dateLayout, strings.TrimSpace(e.Date))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidHoliday, e.Date, err)
		}
		s.days[civil(t)] = e.Name
	}
	return s, nil
}

// LoadHolidays reads a YAML holiday list from path.
func LoadHolidays(_ context.Context, path string) (*HolidaySet, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrLoadHolidays)
	}
	k := koanf.New(".")
	provider := file.Provider(path)
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadHolidays, err)
	}

	var doc holidayDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadHolidays, err)
	}
	return NewHolidaySet(doc.Holidays...)
}

// IsHoliday reports whether date is in the set. It satisfies HolidayFunc.
func (s *HolidaySet) IsHoliday(date time.Time) bool {
	_, ok := s.days[civil(date)]
	return ok
}

// Name returns the holiday name for date, if any.
func (s *HolidaySet) Name(date time.Time) (string, bool) {
	name, ok := s.days[civil(date)]
	return name, ok
}

// Len returns the number of holidays in the set.
func (s *HolidaySet) Len() int { return len(s.days) }
