package main

import (
	"io"

	"github.com/spf13/cobra"
)

func (cli *commandLine) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the totals of the admin summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := cli.stats.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(stats, func(w io.Writer) {
				fprintRow(w, "USERS", "DEPARTMENTS", "COURSES", "ANNOUNCEMENTS")
				fprintRow(w, stats.TotalUsers, stats.TotalDepartments, stats.TotalCourses, stats.TotalAnnouncements)
			})
		},
	}
}
