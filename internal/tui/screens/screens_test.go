package screens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constructsync/dashboard/internal/api"
	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/storage"
	"github.com/constructsync/dashboard/internal/wizard"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// setupDeps serves routes from an httptest server. Unknown paths answer [].
func setupDeps(t *testing.T, routes map[string]string) *Deps {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			body = "[]"
		}
		if len(body) > 4 && body[:4] == "500 " {
			w.WriteHeader(http.StatusInternalServerError)
			body = body[4:]
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	state, err := session.Load(context.Background(), store)
	require.NoError(t, err)

	client := api.New(srv.URL)
	c := cache.New(cache.WithRetries(0, time.Millisecond))
	return &Deps{
		Data:       api.NewCollections(client, c),
		Session:    state,
		Wizard:     wizard.New(store, client, wizard.WithInvalidator(c)),
		ReportsDir: t.TempDir(),
		Now:        func() time.Time { return testNow },
	}
}

func TestWorkers_LoadingState(t *testing.T) {
	deps := setupDeps(t, nil)
	w := NewWorkers(deps)
	w.Init(context.Background())

	assert.Contains(t, w.View(), "Loading workers")
}

func TestWorkers_EmptyState(t *testing.T) {
	deps := setupDeps(t, nil)
	ctx := context.Background()
	w := NewWorkers(deps)
	w.Init(ctx)

	w.Update(deps.loadWorkers(ctx, false)())

	view := w.View()
	assert.Contains(t, view, "No workers yet.")
	assert.NotContains(t, view, "Loading")
}

func TestWorkers_ErrorStateOffersRetry(t *testing.T) {
	deps := setupDeps(t, map[string]string{
		"GET /api/workers": `500 {"message":"Database unavailable"}`,
	})
	ctx := context.Background()
	w := NewWorkers(deps)
	w.Init(ctx)

	w.Update(deps.loadWorkers(ctx, false)())

	view := w.View()
	assert.Contains(t, view, "Database unavailable")
	assert.Contains(t, view, "[r] Retry")

	cmd := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.NotNil(t, cmd)
	assert.Contains(t, w.View(), "Loading workers")
}

func TestWorkers_ResolvesTeamNames(t *testing.T) {
	deps := setupDeps(t, map[string]string{
		"GET /api/workers": `[{"id":1,"name":"Ana Silva","role":"carpenter","status":"active","hourlyRate":"42.50","teamId":3,"skills":["framing"]}]`,
		"GET /api/teams":   `[{"id":3,"name":"Framers","workerIds":[1]}]`,
	})
	ctx := context.Background()
	w := NewWorkers(deps)
	w.Init(ctx)

	w.Update(deps.loadTeams(ctx, false)())
	w.Update(deps.loadWorkers(ctx, false)())

	view := w.View()
	assert.Contains(t, view, "Ana Silva")
	assert.Contains(t, view, "Framers")
	assert.Contains(t, view, "$42.50")
	assert.Contains(t, view, "Skills: framing")
}

func TestWorkers_IgnoresCanceledLoad(t *testing.T) {
	deps := setupDeps(t, nil)
	w := NewWorkers(deps)
	w.Init(context.Background())

	w.Update(workersMsg{res: cache.Result[[]models.Worker]{IsError: true, Err: context.Canceled}})

	assert.Contains(t, w.View(), "Loading workers")
}

const jobsFixture = `[
	{"id":1,"address":"12 Harbour St","clientName":"Acme","jobType":"Renovation","status":"in_progress",
	 "startTime":"2025-03-01T08:00:00Z","endTime":"2025-03-20T17:00:00Z","teamId":3},
	{"id":2,"address":"4 Mill Lane","clientName":"Birch Homes","jobType":"Roofing","status":"scheduled",
	 "startTime":"2025-03-11T08:00:00Z","endTime":"2025-03-14T17:00:00Z"},
	{"id":3,"address":"9 Quay Road","clientName":"Acme","jobType":"Extension","status":"completed",
	 "startTime":"2025-01-05T08:00:00Z","endTime":"2025-02-01T17:00:00Z","assignedTo":5}
]`

func loadedJobs(t *testing.T) (*Jobs, *Deps) {
	t.Helper()
	deps := setupDeps(t, map[string]string{
		"GET /api/jobs":    jobsFixture,
		"GET /api/teams":   `[{"id":3,"name":"Framers"}]`,
		"GET /api/workers": `[{"id":5,"name":"Sam Reid"}]`,
	})
	ctx := context.Background()
	j := NewJobs(deps)
	j.Init(ctx)
	j.Update(deps.loadTeams(ctx, false)())
	j.Update(deps.loadWorkers(ctx, false)())
	j.Update(deps.loadJobs(ctx, false)())
	return j, deps
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestJobs_TabsCountBuckets(t *testing.T) {
	j, _ := loadedJobs(t)

	view := j.View()
	assert.Contains(t, view, "(3)")
	assert.Contains(t, view, "12 Harbour St")
	assert.Contains(t, view, "Framers")
	assert.Contains(t, view, "Sam Reid")
	assert.Contains(t, view, "Unassigned")

	j.Update(key("tab"))
	view = j.View()
	assert.Contains(t, view, "12 Harbour St")
	assert.NotContains(t, view, "4 Mill Lane")
}

func TestJobs_SearchFiltersAndCapturesKeys(t *testing.T) {
	j, _ := loadedJobs(t)

	j.Update(key("/"))
	require.True(t, j.Capturing())
	for _, r := range "birch" {
		j.Update(key(string(r)))
	}
	j.Update(key("enter"))
	assert.False(t, j.Capturing())

	assert.Equal(t, []string{"4 Mill Lane"}, addresses(j.visible()))

	j.Update(key("esc"))
	assert.Len(t, j.visible(), 3)
}

func addresses(jobs []models.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Address
	}
	return out
}

func TestJobs_SortToggle(t *testing.T) {
	j, _ := loadedJobs(t)

	assert.Equal(t, []string{"9 Quay Road", "4 Mill Lane", "12 Harbour St"}, addresses(j.visible()))
	j.Update(key("s"))
	assert.Equal(t, []string{"12 Harbour St", "4 Mill Lane", "9 Quay Road"}, addresses(j.visible()))
}

func TestJobs_EnterOpensDetail(t *testing.T) {
	j, _ := loadedJobs(t)

	cmd := j.Update(key("enter"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	assert.Equal(t, session.JobRoute("3"), msg.Route)
}

func TestJobs_EmptyState(t *testing.T) {
	deps := setupDeps(t, nil)
	ctx := context.Background()
	j := NewJobs(deps)
	j.Init(ctx)
	j.Update(deps.loadJobs(ctx, false)())

	assert.Contains(t, j.View(), "No jobs yet.")
}

func TestDashboard_ShowsWeek(t *testing.T) {
	deps := setupDeps(t, map[string]string{"GET /api/jobs": jobsFixture})
	ctx := context.Background()
	d := NewDashboard(deps)
	d.Init(ctx)
	d.Update(deps.loadJobs(ctx, false)())

	view := d.View()
	assert.Contains(t, view, "Total jobs: 3")
	assert.Contains(t, view, "Tue Mar 11  1 jobs, 1 pending")
	assert.NotContains(t, view, "Loading")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 4, 7 ,,9")
	require.NoError(t, err)
	assert.Equal(t, "4, 7, 9", formatIDs(ids))

	ids, err = parseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDs("4, x")
	assert.Error(t, err)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[#####.....]  50%", progressBar(50, 10))
	assert.Equal(t, "[..........]   0%", progressBar(0, 10))
}

func TestNewJob_PersistsDraftOnEveryKeystroke(t *testing.T) {
	deps := setupDeps(t, nil)
	ctx := context.Background()
	n := NewNewJob(deps)

	n.Update(n.Init(ctx)())
	require.True(t, n.Capturing())

	for _, r := range "12 Harbour" {
		n.Update(key(string(r)))
	}
	assert.Equal(t, "12 Harbour", deps.Wizard.General().Address)
}

func TestNewJob_EnterValidatesBeforeAdvancing(t *testing.T) {
	deps := setupDeps(t, nil)
	ctx := context.Background()
	n := NewNewJob(deps)
	n.Update(n.Init(ctx)())

	n.forms[wizard.GeneralInfo].focusField(generalDescription)
	n.Update(key("enter"))

	assert.Equal(t, wizard.GeneralInfo, deps.Wizard.Step())
	assert.Contains(t, n.View(), "Error:")
}
