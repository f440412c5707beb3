package utils

import (
	"reflect"
	"strings"
	"time"
)

// Wire layouts.
const (
	DateTimeInputLayout = "2006-01-02T15:04" // form field data_hora
	DateLayout          = "2006-01-02"       // search parameter and "data" field
	DateTimeLayout      = "02/01/2006 15:04" // "data_hora" field in JSON
	TimeLayout          = "15:04"            // "hora" field in JSON
)

// ParseDateTimeInput parses a form date-time (YYYY-MM-DDTHH:MM) in loc
// and returns it as epoch milliseconds.
func ParseDateTimeInput(s string, loc *time.Location) (int64, error) {
	t, err := time.ParseInLocation(DateTimeInputLayout, s, loc)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

func FormatEpoch(millis int64, layout string, loc *time.Location) string {
	return time.UnixMilli(millis).
		In(loc).
		Format(layout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns [midnight of day, midnight of day+days) as epoch
// milliseconds. AddDate keeps the bounds on midnight across DST changes.
func DayRange(day time.Time, days int) (int64, int64) {
	start := StartOfDay(day)
	return start.UnixMilli(), start.AddDate(0, 0, days).UnixMilli()
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			if v.Type().Field(i).Tag.Get("sanitize") == "-" {
				continue
			}
			field.SetString(sanitizeString(field.String()))

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
