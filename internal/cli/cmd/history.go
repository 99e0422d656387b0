package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/keelbrowser/keel/internal/application/usecase"
	"github.com/keelbrowser/keel/internal/domain/entity"
)

var (
	historyJSON  bool
	historyLimit int
	historyPages int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage history",
	Long:  `List, delete or clear the visit history of the session store.`,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", usecase.DefaultHistoryPageSize, "entries per page")
	historyListCmd.Flags().IntVar(&historyPages, "pages", 1, "number of pages to fetch (0 = all)")
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, most recent first",
	RunE:  runHistoryList,
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	var entries []entity.HistoryEntry
	var cursor *entity.HistoryCursor
	for page := 0; historyPages == 0 || page < historyPages; page++ {
		result, err := app.HistoryPageUC.Execute(app.Ctx(), usecase.HistoryPageInput{
			Cursor: cursor,
			Limit:  historyLimit,
		})
		if err != nil {
			return err
		}
		entries = append(entries, result.Entries...)
		if result.NextCursor == nil {
			break
		}
		cursor = result.NextCursor
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLACE\tVISITED\tTITLE\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			e.PlaceID, e.VisitDate.Local().Format("2006-01-02 15:04"), e.Title, e.URL)
	}
	return w.Flush()
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <place-id>...",
	Short: "Delete the visit history of the given places",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryDelete,
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	placeIDs := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid place id %q", arg)
		}
		placeIDs = append(placeIDs, id)
	}

	return app.DeleteHistoryUC.Entries(app.Ctx(), placeIDs)
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire visit history",
	RunE: func(_ *cobra.Command, _ []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		return app.DeleteHistoryUC.Clear(app.Ctx())
	},
}
