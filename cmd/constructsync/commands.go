package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/constructsync/dashboard/internal/api"
	"github.com/constructsync/dashboard/internal/config"
	"github.com/constructsync/dashboard/internal/db"
	"github.com/constructsync/dashboard/internal/logger"
	"github.com/constructsync/dashboard/internal/models"
	"github.com/constructsync/dashboard/internal/proxy"
	"github.com/constructsync/dashboard/internal/report"
	"github.com/constructsync/dashboard/internal/views"
	"github.com/constructsync/dashboard/internal/wizard"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Forward /api/* requests to the configured API",
	Long: `Serve the /api/* path prefix locally and forward every request to api_url
(API_URL), keeping the path and query intact.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, false)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = e.cfg.ProxyListen
		}

		router, err := proxy.NewRouter(e.cfg.APIURL)
		if err != nil {
			fail("Error: %v", err)
		}

		logger.New().WithFields(map[string]interface{}{
			"listen":   listen,
			"upstream": e.cfg.APIURL,
		}).Info("proxy starting")

		if err := router.Run(listen); err != nil {
			fail("Error: %v", err)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the jobs, worker hours and safety report as an xlsx workbook",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		dir, _ := cmd.Flags().GetString("output")
		if dir == "" {
			dir = e.cfg.ReportsOutput
		}

		fmt.Println("Fetching collections...")
		in, teams, err := fetchReportInputs(ctx, e.client)
		if err != nil {
			fail("Error: %v", err)
		}

		path, err := report.Build(in, teams, time.Now()).WriteFile(dir)
		if err != nil {
			fail("Error writing report: %v", err)
		}

		fmt.Printf("Jobs: %d\n", len(in.Jobs))
		fmt.Printf("Time entries: %d\n", len(in.TimeEntries))
		fmt.Printf("Incidents: %d\n", len(in.Incidents))
		fmt.Printf("\nReport written to %s\n", path)
	},
}

// fetchReportInputs loads every collection a report needs in parallel.
func fetchReportInputs(ctx context.Context, client *api.Client) (views.Inputs, []models.Team, error) {
	var (
		in    views.Inputs
		teams []models.Team
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		in.Jobs, err = client.ListJobs(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Workers, err = client.ListWorkers(ctx)
		return err
	})
	g.Go(func() (err error) {
		teams, err = client.ListTeams(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.TimeEntries, err = client.ListTimeEntries(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Variations, err = client.ListVariations(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Contracts, err = client.ListContracts(ctx)
		return err
	})
	g.Go(func() (err error) {
		in.Incidents, err = client.ListIncidents(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return views.Inputs{}, nil, err
	}
	return in, teams, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Record the name and email shown in the sidebar",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		if err := e.session.Login(ctx, email, name); err != nil {
			fail("Error: %v", err)
		}
		fmt.Printf("Signed in as %s\n", e.session.DisplayName())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the locally stored identity",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		if _, err := e.session.Logout(ctx); err != nil {
			fail("Error: %v", err)
		}
		fmt.Println("Signed out.")
	},
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect or clear the saved new job drafts",
}

var draftsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved new job drafts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		if err := e.wizard.Load(ctx); err != nil {
			fail("Error: %v", err)
		}
		printDrafts(e.wizard)
	},
}

var draftsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved new job drafts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		if err := e.wizard.Discard(ctx); err != nil {
			fail("Error: %v", err)
		}
		fmt.Println("Drafts cleared.")
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the local state database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local state schema version",
	Run: func(cmd *cobra.Command, args []string) {
		path := databasePath(cmd)

		database, err := db.Connect(path)
		if err != nil {
			fail("Error opening database: %v", err)
		}
		defer database.Close()

		status, err := db.GetMigrationStatus(database)
		if err != nil {
			fail("Error reading migration status: %v", err)
		}

		fmt.Printf("Database: %s\n", path)
		fmt.Printf("Schema:   %s\n", status)
		if status.Dirty {
			os.Exit(1)
		}
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending local state migrations",
	Run: func(cmd *cobra.Command, args []string) {
		path := databasePath(cmd)

		database, err := db.OpenPath(path)
		if err != nil {
			fail("Error: %v", err)
		}
		defer database.Close()

		status, err := db.GetMigrationStatus(database)
		if err != nil {
			fail("Error reading migration status: %v", err)
		}
		fmt.Printf("Schema: %s\n", status)
	},
}

// databasePath is the --path flag, or the configured location.
func databasePath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("path"); path != "" {
		return path
	}
	path, err := config.DatabasePath()
	if err != nil {
		fail("Error: %v", err)
	}
	return path
}

func printDrafts(w *wizard.Wizard) {
	g, t, s := w.General(), w.Team(), w.Site()

	fmt.Printf("Step: %s\n\n", w.Step())
	fmt.Println("General")
	fmt.Printf("  Address:     %s\n", g.Address)
	fmt.Printf("  Job type:    %s\n", g.JobType)
	fmt.Printf("  Client:      %s\n", g.ClientName)
	fmt.Printf("  Status:      %s\n", g.Status)
	fmt.Printf("  Dates:       %s to %s\n", g.StartDate, g.EndDate)
	fmt.Printf("  Budget:      %.2f\n", g.Budget)

	fmt.Println("Team")
	if t.TeamID != nil {
		fmt.Printf("  Team:        %s\n", *t.TeamID)
	}
	fmt.Printf("  Workers:     %v\n", t.WorkerIDs)
	fmt.Printf("  Managers:    %v\n", t.ManagerIDs)

	fmt.Println("Site")
	fmt.Printf("  Contact:     %s %s\n", s.ContactName, s.ContactPhone)
	fmt.Printf("  Access:      %s\n", s.AccessNotes)
	fmt.Printf("  Safety:      %s\n", s.SafetyNotes)

	if id, ok := w.PendingJob(); ok {
		fmt.Printf("\nJob %s was created but its team assignment is still pending.\n", id)
		fmt.Println("Open the New Job screen and press ctrl+r to retry it.")
	}
}

func init() {
	proxyCmd.Flags().StringP("listen", "l", "", "Address to listen on (default: proxy_listen)")

	exportCmd.Flags().StringP("output", "o", "", "Directory for the workbook (default: reports_output)")

	loginCmd.Flags().String("email", "", "Email shown in the sidebar")
	loginCmd.Flags().String("name", "", "Display name shown in the sidebar")
	_ = loginCmd.MarkFlagRequired("email")

	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsClearCmd)

	dbCmd.PersistentFlags().String("path", "", "Database file (default: ~/.constructsync/db/state.sqlite)")
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
