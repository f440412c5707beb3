package service_test

import (
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/apierror"
	"testing"
	"time"
)

var brt = time.FixedZone("BRT", -3*60*60)

// withClock pins the appointment service to 2025-06-01 12:00 in BRT.
func withClock(e *env) {
	e.apptService.Location = brt
	e.apptService.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, brt) }
}

func (e *env) book(t *testing.T, callerID int, title, when string) *service.AppointmentResponse {
	t.Helper()
	resp, apierr := e.apptService.CreateAppointment(&service.AppointmentRequest{Title: title, Description: "desc " + title, DateTime: when}, callerID)
	if apierr != nil {
		t.Fatalf("CreateAppointment(%q, %q) error = %v", title, when, apierr)
	}
	return resp
}

func titlesOf(appts []*service.AppointmentResponse) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.Title
	}
	return out
}

func assertTitles(t *testing.T, got []*service.AppointmentResponse, want ...string) {
	t.Helper()
	titles := titlesOf(got)
	if len(titles) != len(want) {
		t.Fatalf("got %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("got %v, want %v", titles, want)
		}
	}
}

func TestCreateAppointment(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")

	resp := e.book(t, bob.ID, "dentist", "2025-06-01T14:30")
	if resp.ID == 0 || resp.DateTime != "01/06/2025 14:30" || resp.Date != "2025-06-01" || resp.Time != "14:30" {
		t.Errorf("CreateAppointment() = %+v", resp)
	}
	if resp.InputValue != "2025-06-01T14:30" {
		t.Errorf("InputValue = %q", resp.InputValue)
	}

	stored, _ := e.appts.FindByID(resp.ID)
	if stored.UserID != bob.ID || stored.ScheduledAt != time.Date(2025, 6, 1, 14, 30, 0, 0, brt).UnixMilli() {
		t.Errorf("stored appointment = %+v", stored)
	}

	tests := []struct {
		name     string
		req      *service.AppointmentRequest
		callerID int
		want     int
	}{
		{name: "malformed date", req: &service.AppointmentRequest{Title: "x", Description: "y", DateTime: "01/06/2025 14:30"}, callerID: bob.ID, want: 400},
		{name: "impossible date", req: &service.AppointmentRequest{Title: "x", Description: "y", DateTime: "2025-02-30T10:00"}, callerID: bob.ID, want: 400},
		{name: "missing title", req: &service.AppointmentRequest{Description: "y", DateTime: "2025-06-01T14:30"}, callerID: bob.ID, want: 400},
		{name: "missing description", req: &service.AppointmentRequest{Title: "x", DateTime: "2025-06-01T14:30"}, callerID: bob.ID, want: 400},
		{name: "administrator caller", req: &service.AppointmentRequest{Title: "x", Description: "y", DateTime: "2025-06-01T14:30"}, callerID: e.admin.ID, want: 403},
		{name: "unknown caller", req: &service.AppointmentRequest{Title: "x", Description: "y", DateTime: "2025-06-01T14:30"}, callerID: 999, want: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, apierr := e.apptService.CreateAppointment(tt.req, tt.callerID)
			if apierr == nil || apierr.Code() != tt.want {
				t.Errorf("CreateAppointment() error = %v, want code %d", apierr, tt.want)
			}
		})
	}

	if _, apierr := e.apptService.CreateAppointment(&service.AppointmentRequest{Title: "x", Description: "y", DateTime: "2025-13-01T10:00"}, bob.ID); apierr != apierror.InvalidDateError {
		t.Errorf("CreateAppointment() with a bad date error = %v, want invalid date", apierr)
	}
	if count, _ := e.appts.CountByUserID(bob.ID); count != 1 {
		t.Errorf("bob has %d appointments, want 1", count)
	}
}

func TestGetAgenda(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")
	alice := e.createUser(t, "alice", "secret")

	e.book(t, bob.ID, "next week", "2025-06-05T09:00")
	e.book(t, bob.ID, "this morning", "2025-06-01T10:00")
	e.book(t, bob.ID, "right now", "2025-06-01T12:00")
	e.book(t, bob.ID, "this afternoon", "2025-06-01T13:00")
	e.book(t, alice.ID, "alice's", "2025-06-02T09:00")

	agenda, apierr := e.apptService.GetAgenda(bob.ID)
	if apierr != nil {
		t.Fatalf("GetAgenda() error = %v", apierr)
	}
	if agenda.Today != "01/06/2025" {
		t.Errorf("Today = %q, want 01/06/2025", agenda.Today)
	}
	assertTitles(t, agenda.Appointments, "right now", "this afternoon", "next week")

	if _, apierr := e.apptService.GetAgenda(e.admin.ID); apierr != apierror.ForbiddenError {
		t.Errorf("GetAgenda() as admin error = %v, want forbidden", apierr)
	}
}

func TestGetUpcoming(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")

	e.book(t, bob.ID, "yesterday", "2025-05-31T23:59")
	e.book(t, bob.ID, "this morning", "2025-06-01T00:00")
	e.book(t, bob.ID, "day six evening", "2025-06-07T23:59")
	e.book(t, bob.ID, "day seven midnight", "2025-06-08T00:00")
	e.book(t, bob.ID, "day seven evening", "2025-06-08T23:59")
	e.book(t, bob.ID, "day eight", "2025-06-09T00:00")
	e.book(t, bob.ID, "tomorrow", "2025-06-02T08:00")

	upcoming, apierr := e.apptService.GetUpcoming(bob.ID)
	if apierr != nil {
		t.Fatalf("GetUpcoming() error = %v", apierr)
	}
	assertTitles(t, upcoming, "this morning", "tomorrow", "day six evening", "day seven midnight")

	if upcoming[1].DateTime != "02/06/2025 08:00" || upcoming[1].Date != "" || upcoming[1].Time != "" {
		t.Errorf("upcoming entry = %+v, want only data_hora", upcoming[1])
	}
}

func TestSearch(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")

	e.book(t, bob.ID, "late", "2025-06-10T22:00")
	e.book(t, bob.ID, "early", "2025-06-10T07:00")
	e.book(t, bob.ID, "past", "2025-05-01T10:00")
	e.book(t, bob.ID, "next day", "2025-06-11T00:00")

	tests := []struct {
		name    string
		rawDate string
		want    []string
		wantErr apierror.ErrorResponse
	}{
		{name: "no date lists everything", rawDate: "", want: []string{"past", "early", "late", "next day"}},
		{name: "one calendar day", rawDate: "2025-06-10", want: []string{"early", "late"}},
		{name: "day without appointments", rawDate: "2025-06-12", want: []string{}},
		{name: "malformed date", rawDate: "10/06/2025", wantErr: apierror.InvalidDateError},
		{name: "impossible date", rawDate: "2025-02-30", wantErr: apierror.InvalidDateError},
		{name: "date with time", rawDate: "2025-06-10T07:00", wantErr: apierror.InvalidDateError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, apierr := e.apptService.Search(&service.SearchRequest{Date: tt.rawDate}, bob.ID)
			if apierr != tt.wantErr {
				t.Fatalf("Search() error = %v, want %v", apierr, tt.wantErr)
			}
			if tt.wantErr == nil {
				assertTitles(t, got, tt.want...)
			}
		})
	}

	got, _ := e.apptService.Search(&service.SearchRequest{Date: " 2025-06-10 "}, bob.ID)
	if got[0].Date != "2025-06-10" || got[0].Time != "07:00" || got[0].DateTime != "10/06/2025 07:00" {
		t.Errorf("search entry = %+v", got[0])
	}

	if count, _ := e.appts.CountByUserID(bob.ID); count != 4 {
		t.Errorf("search changed the data: %d appointments", count)
	}
}

func TestAppointmentOwnership(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")
	alice := e.createUser(t, "alice", "secret")

	appt := e.book(t, bob.ID, "dentist", "2025-06-03T10:00")
	change := &service.AppointmentRequest{Title: "hijacked", Description: "x", DateTime: "2025-06-04T10:00"}

	if _, apierr := e.apptService.GetAppointment(appt.ID, alice.ID); apierr != apierror.ForbiddenError {
		t.Errorf("GetAppointment() as alice error = %v, want forbidden", apierr)
	}
	if apierr := e.apptService.UpdateAppointment(appt.ID, change, alice.ID); apierr != apierror.ForbiddenError {
		t.Errorf("UpdateAppointment() as alice error = %v, want forbidden", apierr)
	}
	if apierr := e.apptService.DeleteAppointment(appt.ID, alice.ID); apierr != apierror.ForbiddenError {
		t.Errorf("DeleteAppointment() as alice error = %v, want forbidden", apierr)
	}

	stored, _ := e.appts.FindByID(appt.ID)
	if stored == nil || stored.Title != "dentist" || stored.UserID != bob.ID {
		t.Fatalf("appointment changed by another user: %+v", stored)
	}

	for name, apierr := range map[string]apierror.ErrorResponse{
		"get":    func() apierror.ErrorResponse { _, err := e.apptService.GetAppointment(999, bob.ID); return err }(),
		"update": e.apptService.UpdateAppointment(999, change, bob.ID),
		"delete": e.apptService.DeleteAppointment(999, bob.ID),
	} {
		if apierr != apierror.NotFoundError {
			t.Errorf("%s missing appointment error = %v, want not found", name, apierr)
		}
	}
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")
	appt := e.book(t, bob.ID, "dentist", "2025-06-03T10:00")

	if apierr := e.apptService.UpdateAppointment(appt.ID, &service.AppointmentRequest{Title: "x", Description: "y", DateTime: "soon"}, bob.ID); apierr != apierror.InvalidDateError {
		t.Errorf("UpdateAppointment() with a bad date error = %v, want invalid date", apierr)
	}

	apierr := e.apptService.UpdateAppointment(appt.ID, &service.AppointmentRequest{Title: " doctor ", Description: "checkup", DateTime: "2025-06-04T16:15"}, bob.ID)
	if apierr != nil {
		t.Fatalf("UpdateAppointment() error = %v", apierr)
	}

	got, apierr := e.apptService.GetAppointment(appt.ID, bob.ID)
	if apierr != nil {
		t.Fatalf("GetAppointment() error = %v", apierr)
	}
	if got.Title != "doctor" || got.Description != "checkup" || got.DateTime != "04/06/2025 16:15" {
		t.Errorf("updated appointment = %+v", got)
	}

	if apierr := e.apptService.DeleteAppointment(appt.ID, bob.ID); apierr != nil {
		t.Fatalf("DeleteAppointment() error = %v", apierr)
	}
	if _, apierr := e.apptService.GetAppointment(appt.ID, bob.ID); apierr != apierror.NotFoundError {
		t.Errorf("GetAppointment() after delete error = %v, want not found", apierr)
	}
}

func TestDisabledUserCannotUseAppointments(t *testing.T) {
	e := setup(t)
	withClock(e)
	bob := e.createUser(t, "bob", "secret")
	bob.IsActive = false
	_ = e.users.Save(bob)

	if _, apierr := e.apptService.GetAgenda(bob.ID); apierr != apierror.InvalidSessionError {
		t.Errorf("GetAgenda() as disabled user error = %v, want invalid session", apierr)
	}
}
