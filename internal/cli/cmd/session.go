package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keelbrowser/keel/internal/domain/repository"
)

var sessionJSON bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect the persisted session",
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionTabsCmd)
	sessionCmd.AddCommand(sessionWindowCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.PersistentFlags().BoolVar(&sessionJSON, "json", false, "output as JSON")
}

var sessionTabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List the restorable tabs of the last window",
	RunE:  runSessionTabs,
}

func runSessionTabs(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	last, err := app.Windows.LastClosed(app.Ctx())
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Println("no previous session")
		return nil
	}
	if err != nil {
		return err
	}

	tabs, err := app.Tabs.Open(app.Ctx(), last.ID)
	if err != nil {
		return err
	}

	if sessionJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tabs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tSELECTED\tTITLE\tURL")
	for _, t := range tabs {
		title, url := "", "about:blank"
		if t.Place != nil {
			title, url = t.Place.Title, t.Place.URL
		}
		selected := ""
		if t.IsSelected {
			selected = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.Index, selected, title, url)
	}
	return w.Flush()
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session store location and schema version",
	RunE:  runSessionStatus,
}

func runSessionStatus(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	version, err := app.SchemaVersion()
	if err != nil {
		return err
	}

	if sessionJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"database":       app.Config.Database.Path,
			"schema_version": version,
		})
	}

	fmt.Printf("database: %s\nschema version: %d\n", app.Config.Database.Path, version)
	return nil
}

var sessionWindowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the geometry the next window would restore",
	RunE:  runSessionWindow,
}

func runSessionWindow(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	last, err := app.Windows.LastClosed(app.Ctx())
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Println("no previous session")
		return nil
	}
	if err != nil {
		return err
	}

	if sessionJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(last)
	}

	fmt.Printf("window %d: %dx%d at (%d,%d), maximized=%v, closed %s\n",
		last.ID, last.Width, last.Height, last.X, last.Y, last.IsMaximized,
		last.ClosedOn.Local().Format("2006-01-02 15:04"))
	return nil
}
