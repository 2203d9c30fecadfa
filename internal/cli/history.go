package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-gauge/internal/storage"
)

// ErrProjectNotFound is returned when the history has no component with the key.
var ErrProjectNotFound = errors.New("project not found in history")

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <project-key>",
	Short: "List the recorded analyses and versions of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDir, cfg, _, err := loadEnvironment()
		if err != nil {
			return err
		}
		db, err := storage.Open(cfg.DatabasePath(rootDir))
		if err != nil {
			return err
		}
		defer db.Close()
		return printHistory(cmd.OutOrStdout(), db, args[0])
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

// printHistory lists analyses oldest first, with the versions they introduced.
func printHistory(out io.Writer, db *sql.DB, projectKey string) error {
	project, err := storage.NewComponentStore(db).SelectByKey(projectKey)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectKey)
	}

	snapshots := storage.NewSnapshotStore(db)
	analyses, err := snapshots.SelectSnapshots(project.UUID)
	if err != nil {
		return err
	}
	events, err := snapshots.SelectVersionEvents(project.UUID)
	if err != nil {
		return err
	}
	versionOf := make(map[string]string, len(events))
	for _, e := range events {
		versionOf[e.AnalysisUUID] = e.Name
	}

	fmt.Fprintf(out, "%s (%s): %d analyses\n", project.Key, project.Name, len(analyses))
	for _, s := range analyses {
		status := "processed"
		if !s.IsProcessed() {
			status = "unprocessed"
		}
		version := "-"
		if s.Version != nil {
			version = *s.Version
		}
		line := fmt.Sprintf("  %s  %s  %-12s %-11s",
			time.UnixMilli(s.CreatedAt).UTC().Format("2006-01-02 15:04"), s.UUID, version, status)
		if name, ok := versionOf[s.UUID]; ok {
			line += "  new version " + name
		}
		if s.IsLast {
			line += "  (last)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
