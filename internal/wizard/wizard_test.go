package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/constructsync/dashboard/internal/api"
	apperrors "github.com/constructsync/dashboard/internal/errors"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/storage"
)

type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingInvalidator) Invalidate(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

type fakeJobsAPI struct {
	mu      sync.Mutex
	posts   []map[string]interface{}
	patches []map[string]interface{}
	patchID string
}

func (f *fakeJobsAPI) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/jobs":
		f.posts = append(f.posts, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"address":"1 Test St","status":"scheduled"}`))
	case r.Method == http.MethodPatch:
		f.patches = append(f.patches, body)
		f.patchID = r.URL.Path
		_, _ = w.Write([]byte(`{"id":7}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

func newRoundTrip(t *testing.T) (*fakeJobsAPI, *api.Client) {
	t.Helper()
	f := &fakeJobsAPI{}
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return f, api.New(srv.URL)
}

func fillGeneral(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.SetGeneral(ctx, General{JobType: "Drywall", Address: "1 Test St", ClientName: "Acme"}))
	require.NoError(t, w.Next(ctx))
}

func assertDraftsCleared(t *testing.T, store storage.Store) {
	t.Helper()
	for _, key := range append(DraftKeys, storage.KeyPendingAssign) {
		_, ok, err := store.Get(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, ok, "%s should be cleared", key)
	}
}

func TestFinish_WithoutAssignmentPostsOnce(t *testing.T) {
	ctx := context.Background()
	fake, client := newRoundTrip(t)
	store := storage.NewMemoryStore()
	inv := &recordingInvalidator{}
	w := New(store, client, WithInvalidator(inv), WithAssignRetries(0, time.Millisecond))

	fillGeneral(t, w)
	require.NoError(t, w.Next(ctx))
	require.Equal(t, SiteInformation, w.Step())

	out, err := w.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, Outcome{JobID: 7, Created: true}, out)
	assert.Equal(t, Submitted, w.Step())

	require.Len(t, fake.posts, 1)
	assert.Equal(t, "Drywall", fake.posts[0]["jobType"])
	assert.Equal(t, "1 Test St", fake.posts[0]["address"])
	assert.Equal(t, "Acme", fake.posts[0]["clientName"])
	assert.Equal(t, "scheduled", fake.posts[0]["status"])
	assert.NotContains(t, fake.posts[0], "endTime")
	assert.NotContains(t, fake.posts[0], "teamId")
	assert.Empty(t, fake.patches)

	assertDraftsCleared(t, store)
	assert.Contains(t, inv.keys, api.KeyJobs)
}

func TestFinish_WithAssignmentPatchesNewJob(t *testing.T) {
	ctx := context.Background()
	fake, client := newRoundTrip(t)
	store := storage.NewMemoryStore()
	w := New(store, client, WithAssignRetries(0, time.Millisecond))

	fillGeneral(t, w)
	team := models.ID(3)
	require.NoError(t, w.SetTeam(ctx, Team{TeamID: &team, WorkerIDs: []models.ID{10, 11}}))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.SetSite(ctx, Site{ContactName: "Jo", AccessNotes: "Gate code 1234"}))

	out, err := w.Finish(ctx)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.True(t, out.Assigned)

	require.Len(t, fake.posts, 1)
	assert.Equal(t, "Jo", fake.posts[0]["siteContactName"])
	assert.Equal(t, "Gate code 1234", fake.posts[0]["accessNotes"])
	assert.Equal(t, float64(3), fake.posts[0]["teamId"])
	assert.Equal(t, []interface{}{float64(10), float64(11)}, fake.posts[0]["workerIds"])
	assert.NotContains(t, fake.posts[0], "startTime", "blank dates are left out")

	require.Len(t, fake.patches, 1)
	assert.Equal(t, "/api/jobs/7", fake.patchID)
	assert.Equal(t, float64(3), fake.patches[0]["teamId"])
	assert.Equal(t, []interface{}{float64(10), float64(11)}, fake.patches[0]["workerIds"])

	assertDraftsCleared(t, store)
}

func TestNext_ValidatesGeneralInfo(t *testing.T) {
	ctx := context.Background()
	w := New(storage.NewMemoryStore(), &MockJobAPI{})

	require.NoError(t, w.SetGeneral(ctx, General{Address: "1 Test St"}))
	err := w.Next(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, GeneralInfo, w.Step())

	require.NoError(t, w.SetGeneral(ctx, General{Address: "1 Test St", JobType: "Roofing", ClientName: "Acme", StartDate: "01/02/2025"}))
	err = w.Next(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StartDate")
}

func TestBack_KeepsLaterSteps(t *testing.T) {
	ctx := context.Background()
	w := New(storage.NewMemoryStore(), &MockJobAPI{})

	fillGeneral(t, w)
	team := models.ID(5)
	require.NoError(t, w.SetTeam(ctx, Team{TeamID: &team}))
	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.SetSite(ctx, Site{SafetyNotes: "Asbestos survey done"}))

	require.NoError(t, w.Back(ctx))
	require.NoError(t, w.Back(ctx))
	assert.Equal(t, GeneralInfo, w.Step())
	require.NoError(t, w.Back(ctx))
	assert.Equal(t, GeneralInfo, w.Step())

	require.NoError(t, w.Next(ctx))
	require.NoError(t, w.Next(ctx))
	assert.Equal(t, "Asbestos survey done", w.Site().SafetyNotes)
	assert.Equal(t, &team, w.Team().TeamID)
}

func TestLoad_ResumesDrafts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := New(store, &MockJobAPI{})
	fillGeneral(t, first)
	require.NoError(t, first.SetSite(ctx, Site{ContactPhone: "0400 000 000"}))

	second := New(store, &MockJobAPI{})
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, "Drywall", second.General().JobType)
	assert.Equal(t, "0400 000 000", second.Site().ContactPhone)
	_, pendingJob := second.PendingJob()
	assert.False(t, pendingJob)
}

func TestFinish_CreateFailureKeepsDrafts(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	jobs := &MockJobAPI{}
	jobs.On("CreateJob", mock.Anything, mock.Anything).
		Return(nil, &apperrors.RequestError{Status: 400, Message: "Address is invalid"}).Once()

	w := New(store, jobs)
	fillGeneral(t, w)

	out, err := w.Finish(ctx)
	require.Error(t, err)
	assert.Equal(t, "Address is invalid", err.Error())
	assert.Equal(t, Outcome{}, out)

	raw, ok, err := store.Get(ctx, storage.KeyAddJobGeneral)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Drywall")
	jobs.AssertNotCalled(t, "UpdateJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinish_PartialFailureThenResume(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	jobs := &MockJobAPI{}
	jobs.On("CreateJob", mock.Anything, mock.Anything).Return(&models.Job{ID: 42}, nil).Once()
	jobs.On("UpdateJob", mock.Anything, models.ID(42), mock.Anything).
		Return(nil, &apperrors.RequestError{Status: 422, Message: "Unknown team"}).Once()

	w := New(store, jobs, WithAssignRetries(3, time.Millisecond))
	fillGeneral(t, w)
	team := models.ID(9)
	require.NoError(t, w.SetTeam(ctx, Team{TeamID: &team}))

	out, err := w.Finish(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsPartialFailure(err))
	assert.Equal(t, Outcome{JobID: 42, Created: true}, out)
	jobs.AssertNumberOfCalls(t, "UpdateJob", 1)

	var p pending
	ok, err := storage.GetJSON(ctx, store, storage.KeyPendingAssign, &p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.ID(42), p.JobID)

	// a fresh session picks up the pending id and repeats only the PATCH
	resumed := New(store, jobs)
	require.NoError(t, resumed.Load(ctx))
	id, ok := resumed.PendingJob()
	require.True(t, ok)
	assert.Equal(t, models.ID(42), id)

	jobs.On("UpdateJob", mock.Anything, models.ID(42), mock.Anything).Return(&models.Job{ID: 42}, nil).Once()
	out, err = resumed.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, Outcome{JobID: 42, Created: true, Assigned: true}, out)

	jobs.AssertNumberOfCalls(t, "CreateJob", 1)
	assertDraftsCleared(t, store)
}

func TestFinish_RetriesTransientAssignmentFailure(t *testing.T) {
	ctx := context.Background()
	jobs := &MockJobAPI{}
	jobs.On("CreateJob", mock.Anything, mock.Anything).Return(&models.Job{ID: 8}, nil).Once()
	jobs.On("UpdateJob", mock.Anything, models.ID(8), mock.Anything).
		Return(nil, &apperrors.RequestError{Status: 503, Message: "Service Unavailable"}).Once()
	jobs.On("UpdateJob", mock.Anything, models.ID(8), mock.Anything).Return(&models.Job{ID: 8}, nil).Once()

	w := New(storage.NewMemoryStore(), jobs, WithAssignRetries(2, time.Millisecond))
	fillGeneral(t, w)
	require.NoError(t, w.SetTeam(ctx, Team{ManagerIDs: []models.ID{2}}))

	out, err := w.Finish(ctx)
	require.NoError(t, err)
	assert.True(t, out.Assigned)
	jobs.AssertNumberOfCalls(t, "UpdateJob", 2)
}

func TestResumeAssignment_NothingPending(t *testing.T) {
	w := New(storage.NewMemoryStore(), &MockJobAPI{})
	_, err := w.ResumeAssignment(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoPendingAssignment)
}

func TestFinish_AfterSubmit(t *testing.T) {
	ctx := context.Background()
	jobs := &MockJobAPI{}
	jobs.On("CreateJob", mock.Anything, mock.Anything).Return(&models.Job{ID: 1}, nil).Once()

	w := New(storage.NewMemoryStore(), jobs)
	fillGeneral(t, w)
	_, err := w.Finish(ctx)
	require.NoError(t, err)

	_, err = w.Finish(ctx)
	assert.ErrorIs(t, err, apperrors.ErrWizardSubmitted)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	w := New(store, &MockJobAPI{})
	fillGeneral(t, w)

	require.NoError(t, w.Discard(ctx))
	assert.Equal(t, GeneralInfo, w.Step())
	assert.Empty(t, w.General().Address)
	assertDraftsCleared(t, store)
}

func TestMerge(t *testing.T) {
	team := models.ID(3)
	req := merge(
		General{Address: "1 Test St", JobType: "Drywall", ClientName: "Acme", StartDate: "2025-07-01", Budget: 1500},
		Team{TeamID: &team, ManagerIDs: []models.ID{9}},
		Site{ContactName: "Jo"},
	)
	assert.Equal(t, models.JobScheduled, req.Status)
	require.NotNil(t, req.StartTime)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), req.StartTime.Time)
	assert.Nil(t, req.EndTime)
	assert.Equal(t, &team, req.TeamID)
	assert.Equal(t, []models.ID{9}, req.ManagerIDs)
	assert.Equal(t, models.Number(1500), req.Budget)
	assert.Equal(t, "Jo", req.SiteContactName)
}
