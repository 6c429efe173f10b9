package session

import "strings"

const (
	RouteDashboard  = "/"
	RouteJobs       = "/jobs"
	RouteNewJob     = "/jobs/new"
	RouteWorkers    = "/workers"
	RouteTeams      = "/teams"
	RouteVariations = "/variations"
	RouteTimesheets = "/timesheets"
	RouteSafety     = "/safety"
	RouteContracts  = "/contracts"
	RouteReports    = "/reports"
	RouteLogin      = "/login"
)

// Entry is one sidebar item.
type Entry struct {
	Label string
	Route string
	Key   string
}

// Nav is the sidebar in display order.
var Nav = []Entry{
	{Label: "Dashboard", Route: RouteDashboard, Key: "1"},
	{Label: "Jobs", Route: RouteJobs, Key: "2"},
	{Label: "Workers", Route: RouteWorkers, Key: "3"},
	{Label: "Teams", Route: RouteTeams, Key: "4"},
	{Label: "Variations", Route: RouteVariations, Key: "5"},
	{Label: "Timesheets", Route: RouteTimesheets, Key: "6"},
	{Label: "Safety", Route: RouteSafety, Key: "7"},
	{Label: "Contracts", Route: RouteContracts, Key: "8"},
	{Label: "Reports", Route: RouteReports, Key: "9"},
}

// Active reports whether entry should be highlighted on route. Routes match
// exactly; non-root entries also match their child routes, so /jobs/42
// highlights Jobs.
func (e Entry) Active(route string) bool {
	if route == e.Route {
		return true
	}
	if e.Route == RouteDashboard {
		return false
	}
	return strings.HasPrefix(route, e.Route+"/")
}

// ActiveEntry returns the entry highlighted on route.
func ActiveEntry(route string) (Entry, bool) {
	for _, e := range Nav {
		if e.Active(route) {
			return e, true
		}
	}
	return Entry{}, false
}

// JobRoute is the detail route of a job.
func JobRoute(id string) string {
	return RouteJobs + "/" + id
}

// JobIDFromRoute extracts the id from a job detail route.
func JobIDFromRoute(route string) (string, bool) {
	rest := strings.TrimPrefix(route, RouteJobs+"/")
	if rest == route || rest == "" || rest == "new" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
