package utils_test

import (
	"agenda/cmd/internal/utils"
	"testing"
	"time"
)

func TestDateTimeRoundTrip(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	millis, err := utils.ParseDateTimeInput("2025-06-01T14:30", loc)
	if err != nil {
		t.Fatalf("ParseDateTimeInput() error = %v", err)
	}

	tests := []struct {
		layout string
		want   string
	}{
		{layout: utils.DateTimeLayout, want: "01/06/2025 14:30"},
		{layout: utils.DateLayout, want: "2025-06-01"},
		{layout: utils.TimeLayout, want: "14:30"},
		{layout: utils.DateTimeInputLayout, want: "2025-06-01T14:30"},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := utils.FormatEpoch(millis, tt.layout, loc); got != tt.want {
				t.Errorf("FormatEpoch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDateTimeInputRejects(t *testing.T) {
	for _, raw := range []string{"", "2025-06-01", "01/06/2025 14:30", "2025-13-01T10:00", "2025-06-01T25:00", "not-a-date"} {
		t.Run(raw, func(t *testing.T) {
			if _, err := utils.ParseDateTimeInput(raw, time.UTC); err == nil {
				t.Errorf("ParseDateTimeInput(%q) error = nil, want error", raw)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	day, err := utils.ParseDate("2025-06-01", time.UTC)
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC); !day.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", day, want)
	}

	if _, err := utils.ParseDate("2025-02-30", time.UTC); err == nil {
		t.Error("ParseDate(2025-02-30) error = nil, want error")
	}
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	day := time.Date(2025, 6, 1, 17, 45, 0, 0, loc)

	tests := []struct {
		name     string
		days     int
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "single day",
			days:     1,
			wantFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
		},
		{
			name:     "eight calendar days",
			days:     8,
			wantFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, loc),
			wantTo:   time.Date(2025, 6, 9, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := utils.DayRange(day, tt.days)
			if from != tt.wantFrom.UnixMilli() || to != tt.wantTo.UnixMilli() {
				t.Errorf("DayRange() = [%d, %d), want [%d, %d)", from, to, tt.wantFrom.UnixMilli(), tt.wantTo.UnixMilli())
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	req := struct {
		Username string
		Password string `sanitize:"-"`
		Tags     []string
		Count    int
		hidden   string
	}{
		Username: "  bob \n",
		Password: " pass ",
		Tags:     []string{" a", "b "},
		Count:    3,
		hidden:   " x ",
	}

	utils.Sanitize(&req)

	if req.Username != "bob" {
		t.Errorf("Username = %q, want %q", req.Username, "bob")
	}
	if req.Password != " pass " {
		t.Errorf("Password = %q, want it untouched", req.Password)
	}
	if req.Tags[0] != "a" || req.Tags[1] != "b" {
		t.Errorf("Tags = %q, want trimmed", req.Tags)
	}
	if req.hidden != " x " {
		t.Errorf("hidden = %q, want it untouched", req.hidden)
	}
}

func TestSanitizePanicsOnNonPointer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Sanitize() did not panic")
		}
	}()
	utils.Sanitize(struct{ Name string }{Name: "x"})
}

func TestCheckbox(t *testing.T) {
	tests := []struct {
		param   string
		want    bool
		wantErr bool
	}{
		{param: "on", want: true},
		{param: "true", want: true},
		{param: "1", want: true},
		{param: "YES", want: true},
		{param: "", want: false},
		{param: "off", want: false},
		{param: "0", want: false},
		{param: "perhaps", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			var c utils.Checkbox
			err := c.UnmarshalParam(tt.param)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalParam(%q) error = %v, wantErr %v", tt.param, err, tt.wantErr)
			}
			if c.Bool() != tt.want {
				t.Errorf("UnmarshalParam(%q) = %v, want %v", tt.param, c.Bool(), tt.want)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("SecurePass123!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "SecurePass123!" {
		t.Fatal("HashPassword() returned the plain password")
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "matching password", password: "SecurePass123!", hash: hash, want: true},
		{name: "wrong password", password: "WrongPassword123!", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "garbage hash", password: "SecurePass123!", hash: "not-a-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.CheckPassword(tt.hash, tt.password); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
