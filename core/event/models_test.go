package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/uniguide/core"
)

func date(s string) time.Time {
	t, _ := time.Parse(core.DateLayout, s)
	return t
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantStart time.Time
		wantEnd   *time.Time
		wantErr   bool
	}{
		{name: "startDate", data: `{"id":1,"title":"Open day","startDate":"2025-03-01T09:00:00Z"}`, wantStart: date("2025-03-01").Add(9 * time.Hour)},
		{name: "plain date", data: `{"id":1,"title":"Open day","startDate":"2025-03-01"}`, wantStart: date("2025-03-01")},
		{name: "legacy date", data: `{"id":1,"title":"Open day","date":"2025-01-15"}`, wantStart: date("2025-01-15")},
		{name: "startDate wins over date", data: `{"id":1,"startDate":"2025-03-01","date":"2025-01-15"}`, wantStart: date("2025-03-01")},
		{name: "end date", data: `{"id":1,"startDate":"2025-03-01","endDate":"2025-03-02"}`, wantStart: date("2025-03-01"), wantEnd: func() *time.Time { d := date("2025-03-02"); return &d }()},
		{name: "invalid date", data: `{"id":1,"startDate":"lol"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			err := json.Unmarshal([]byte(tt.data), &e)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, e.ID)
			assert.True(t, tt.wantStart.Equal(e.StartDate), "startDate = %v, want %v", e.StartDate, tt.wantStart)
			if tt.wantEnd == nil {
				assert.Nil(t, e.EndDate)
			} else {
				require.NotNil(t, e.EndDate)
				assert.True(t, tt.wantEnd.Equal(*e.EndDate))
			}
		})
	}
}

func TestEvent_MarshalJSON_roundTrip(t *testing.T) {
	e := Event{Title: "Open day", StartDate: date("2025-03-01"), IsPublic: true, Status: StatusUpcoming}
	e.ID = 3
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e.ID, got.ID)
	assert.True(t, e.StartDate.Equal(got.StartDate))
	assert.Equal(t, e.IsPublic, got.IsPublic)
}

func TestUpcoming(t *testing.T) {
	mk := func(id int, start string, public bool) Event {
		e := Event{StartDate: date(start), IsPublic: public}
		e.ID = id
		return e
	}
	events := []Event{
		mk(1, "2025-03-01", true),
		mk(2, "2025-01-15", true),
		mk(3, "2024-12-01", false),
		mk(4, "2025-06-01", true),
		mk(5, "2025-02-10", true),
	}

	got := Upcoming(events, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 5, 1}, []int{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 1, events[0].ID, "source must not be reordered")

	got = Upcoming([]Event{mk(1, "2025-03-01", true), mk(2, "2025-01-15", true)}, 3)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID, "Jan 15 before Mar 1")
	assert.Equal(t, 1, got[1].ID)
}

func TestInput_Validate(t *testing.T) {
	validate, translator := core.NewValidator()

	check := func(in *Input) map[string]string {
		in.Clean()
		if err := validate.Struct(in); err != nil {
			return core.FieldErrors(err, translator)
		}
		if flds := in.Check(); len(flds) > 0 {
			return core.FieldErrors(core.NewValidationError(nil, flds...), nil)
		}
		return nil
	}

	in := &Input{Title: "Open day", Date: "2025-01-15"}
	assert.Nil(t, check(in))
	assert.Equal(t, "2025-01-15", in.StartDate, "legacy date is accepted as startDate")
	assert.Equal(t, StatusUpcoming, in.Status)
	assert.True(t, date("2025-01-15").Equal(in.Record().StartDate))

	assert.Equal(t,
		map[string]string{"endDate": "end date cannot be before the start date"},
		check(&Input{Title: "Open day", StartDate: "2025-03-01", EndDate: "2025-02-01"}),
	)
	assert.Equal(t,
		map[string]string{"startDate": "please enter a valid date (YYYY-MM-DD)"},
		check(&Input{Title: "Open day", StartDate: "01/03/2025"}),
	)
	assert.Contains(t, check(&Input{Title: "Open day"}), "startDate")
}
