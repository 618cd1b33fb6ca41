package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"todo_backend/internal/app/di"
	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/jobqueue"
)

// dbOpener はコマンド実行時に接続を開きます。テストではSQLiteに差し替えます。
type dbOpener func(ctx context.Context) (*gorm.DB, error)

func newRootCmd(open dbOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "todo-admin",
		Short:         "Administrative tasks for the todo backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(open), newJobsCmd(open))
	return root
}

func newMigrateCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, todos and jobs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := open(cmd.Context())
			if err != nil {
				return err
			}
			models := di.Models()
			if err := db.Migrate(cmd.Context(), gdb, models...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(models))
			return nil
		},
	}
}

func newJobsCmd(open dbOpener) *cobra.Command {
	jobs := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage background jobs",
	}

	var (
		channel    string
		failedOnly bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List queued, retrying and failed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := open(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := jobqueue.NewQueue(gdb).List(cmd.Context(), channel)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHANNEL\tNAME\tATTEMPTS\tSTATE\tRUN AT\tLAST ERROR")
			for _, j := range rows {
				state := jobState(&j)
				if failedOnly && state != "failed" {
					continue
				}
				lastErr := ""
				if j.LastError != nil {
					lastErr = *j.LastError
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
					j.ID, j.Channel, j.Name, j.Attempts, j.MaxAttempts, state,
					j.RunAt.UTC().Format(time.RFC3339), lastErr)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&channel, "channel", "", "only jobs on this channel")
	list.Flags().BoolVar(&failedOnly, "failed", false, "only jobs that exhausted their attempts")

	retry := &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Make a failed job ready again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			gdb, err := open(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := jobqueue.NewQueue(gdb).Retry(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("job %s not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s scheduled\n", id)
			return nil
		},
	}

	jobs.AddCommand(list, retry)
	return jobs
}

func jobState(j *jobqueue.Job) string {
	switch {
	case j.FailedAt != nil:
		return "failed"
	case j.LastError != nil:
		return "retrying"
	default:
		return "queued"
	}
}
