package main

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

var nowFunc = time.Now // mockable

func (cli *commandLine) announcementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"announcement", "ann"},
		Short:   "List, publish, edit and delete announcements",
		Long:    "List, publish, edit and delete announcements. Changes need a login.",
	}
	cmd.AddCommand(
		cli.announcementListCmd(),
		cli.announcementCreateCmd(),
		cli.announcementEditCmd(),
		cli.announcementDeleteCmd(),
	)
	return cmd
}

type announcementFlags struct {
	values announcement.Draft
	file   string
}

func (f *announcementFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.values.Title, "title", "", "title")
	flags.StringVar(&f.values.Content, "content", "", "content")
	flags.StringVar(&f.values.Audience, "audience", "", "audience: all, students or lecturers (default all)")
	flags.StringVar(&f.values.Department, "department", "", "restrict to a department id")
	flags.StringVar(&f.values.ExpiresAt, "expires-at", "", "last day the announcement is shown, as YYYY-MM-DD")
	flags.StringVarP(&f.file, "file", "f", "", "read the announcement from a YAML file; flags override its values")
}

func (f *announcementFlags) apply(cmd *cobra.Command, d *announcement.Draft) error {
	if f.file != "" {
		if err := readYAML(f.file, d); err != nil {
			return err
		}
	}
	setFlag(cmd, "title", &d.Title, f.values.Title)
	setFlag(cmd, "content", &d.Content, f.values.Content)
	setFlag(cmd, "audience", &d.Audience, f.values.Audience)
	setFlag(cmd, "department", &d.Department, f.values.Department)
	setFlag(cmd, "expires-at", &d.ExpiresAt, f.values.ExpiresAt)
	return nil
}

func (cli *commandLine) announcementListCmd() *cobra.Command {
	var (
		audience string
		recent   int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List announcements",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed := cli.announcements.NewEditor(cli.deps())
			if err := ed.Mount(cmd.Context()); err != nil {
				return err
			}

			anns := ed.Store.Records()
			if audience != "" {
				anns = announcement.Visible(anns, audience, nowFunc())
			}
			if recent > 0 {
				anns = announcement.Recent(anns, recent)
			}
			return cli.printAnnouncements(anns)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&audience, "audience", "", "only the unexpired announcements shown to students or lecturers")
	flags.IntVar(&recent, "recent", 0, "only the n newest announcements")
	return cmd
}

func (cli *commandLine) announcementCreateCmd() *cobra.Command {
	var f announcementFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"publish"},
		Short:   "Publish an announcement",
		Example: `  masomo-admin announcements create --title "Exams" --content "Exams start on Monday." --audience students`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ed := cli.announcements.NewEditor(cli.deps())
			if err := f.apply(cmd, ed.New()); err != nil {
				return err
			}
			a, err := ed.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printAnnouncements([]announcement.Announcement{a})
		},
	}
	f.register(cmd)
	return cmd
}

func (cli *commandLine) announcementEditCmd() *cobra.Command {
	var f announcementFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed := cli.announcements.NewEditor(cli.deps())
			if err := ed.Mount(ctx); err != nil {
				return err
			}
			draft, err := ed.Edit(args[0])
			if err != nil {
				return err
			}
			before := *draft
			if err := f.apply(cmd, draft); err != nil {
				return err
			}
			if ok, err := cli.confirmEdit(ctx, "announcement "+args[0], before, *draft); err != nil || !ok {
				return err
			}

			a, err := ed.Submit(ctx)
			if err != nil {
				return err
			}
			return cli.printAnnouncements([]announcement.Announcement{a})
		},
	}
	f.register(cmd)
	return cmd
}

func (cli *commandLine) announcementDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an announcement",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed := cli.announcements.NewEditor(cli.deps())
			if err := ed.Remove(cmd.Context(), args[0]); err != nil {
				if errors.Cause(err) == crud.ErrNotConfirmed {
					cli.notifier.Notify(core.Info("Deletion cancelled."))
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func (cli *commandLine) printAnnouncements(anns []announcement.Announcement) error {
	now := nowFunc()
	return cli.print(anns, func(w io.Writer) {
		fprintRow(w, "ID", "TITLE", "AUDIENCE", "DEPARTMENT", "AUTHOR", "EXPIRES")
		for _, a := range anns {
			expires := "never"
			if a.ExpiresAt.Valid {
				expires = a.ExpiresAt.Time.UTC().Format(announcement.DateLayout)
				if a.Expired(now) {
					expires += " (expired)"
				}
			}
			fprintRow(w, a.ID, a.Title, orDash(a.Audience), orDash(a.Department.Name()), orDash(a.Author.Name()), expires)
		}
	})
}
