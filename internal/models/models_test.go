package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_AcceptsNumberAndString(t *testing.T) {
	var v struct {
		A ID  `json:"a"`
		B ID  `json:"b"`
		C *ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":42,"b":"99","c":null}`), &v))
	assert.Equal(t, ID(42), v.A)
	assert.Equal(t, ID(99), v.B)
	assert.Nil(t, v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &v))
}

func TestNumber_AcceptsDecimalStrings(t *testing.T) {
	var v struct {
		Amount Number `json:"amount"`
		Rate   Number `json:"rate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"1250.50","rate":45}`), &v))
	assert.InDelta(t, 1250.50, v.Amount.Float(), 0.0001)
	assert.InDelta(t, 45.0, v.Rate.Float(), 0.0001)
}

func TestTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		zero  bool
	}{
		{"rfc3339", `"2025-03-01T08:30:00Z"`, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), false},
		{"millis", `"2025-03-01T08:30:00.123Z"`, time.Date(2025, 3, 1, 8, 30, 0, 123000000, time.UTC), false},
		{"no zone", `"2025-03-01T08:30:00"`, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), false},
		{"date only", `"2025-03-01"`, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"null", `null`, time.Time{}, true},
		{"empty", `""`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.Equal(t, tt.zero, ts.IsZero())
			if !tt.zero {
				assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
			}
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestTimestamp_MarshalZeroAsNull(t *testing.T) {
	raw, err := json.Marshal(struct {
		T Timestamp `json:"t"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":null}`, string(raw))
}

func TestNormalizeJob_FillsDefaultsAndLegacyNames(t *testing.T) {
	var j Job
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"client_name":"Acme","job_type":"Drywall"}`), &j))
	NormalizeJob(&j)

	assert.Equal(t, "Acme", j.ClientName)
	assert.Equal(t, "Drywall", j.JobType)
	assert.Empty(t, j.Status, "a missing status is not guessed")
	assert.Equal(t, "No status", j.Status.Label())
	assert.NotNil(t, j.WorkerIDs)
	assert.False(t, j.HasAssignee())
}

func TestNormalizeWorker_BuildsName(t *testing.T) {
	w := Worker{FirstName: "Sam", LastName: "Ortiz", Type: "electrician"}
	NormalizeWorker(&w)
	assert.Equal(t, "Sam Ortiz", w.Name)
	assert.Equal(t, "electrician", w.Role)
	assert.Equal(t, "active", w.Status)
}

func TestNormalizeTimeEntry_DerivesHours(t *testing.T) {
	in := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	e := TimeEntry{CheckInTime: At(in), CheckOutTime: At(in.Add(7*time.Hour + 30*time.Minute))}
	NormalizeTimeEntry(&e)
	assert.InDelta(t, 7.5, e.Hours.Float(), 0.0001)

	open := TimeEntry{CheckInTime: At(in)}
	NormalizeTimeEntry(&open)
	assert.True(t, open.IsOpen())
	assert.Zero(t, open.Hours)
}

func TestNormalizeContract_Outstanding(t *testing.T) {
	c := SubcontractorContract{BaseAmount: 10000, VariationAmount: 2000, TotalPaid: 4000}
	NormalizeContract(&c)
	assert.Equal(t, Number(12000), c.TotalValue)
	assert.Equal(t, Number(8000), c.Outstanding)
}

func TestJobStatus(t *testing.T) {
	assert.True(t, JobInProgress.IsValid())
	assert.False(t, JobStatus("paused").IsValid())
	assert.Equal(t, "In Progress", JobInProgress.Label())
	assert.Equal(t, "paused", JobStatus("paused").Label())
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestCreateJobRequest_OmitsBlankOptionalFields(t *testing.T) {
	raw, err := json.Marshal(CreateJobRequest{Address: "1 Test St", JobType: "Drywall", ClientName: "Acme"})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, key := range []string{"startTime", "endTime", "teamId", "workerIds", "managerIds"} {
		assert.NotContains(t, body, key)
	}

	start := At(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	raw, err = json.Marshal(CreateJobRequest{StartTime: &start})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"startTime":"2025-07-01T00:00:00Z"`)
}
