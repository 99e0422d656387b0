package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var bookmarkRemove bool

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <place-id>",
	Short: "Bookmark a place (or remove the bookmark with --remove)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmark,
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.Flags().BoolVar(&bookmarkRemove, "remove", false, "remove the bookmark")
}

func runBookmark(_ *cobra.Command, args []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	placeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid place id %q", args[0])
	}

	return app.BookmarkUC.Execute(app.Ctx(), placeID, !bookmarkRemove)
}
