package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
)

func (cli *commandLine) coursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "courses",
		Aliases: []string{"course"},
		Short:   "List, create, edit and delete courses",
	}
	cmd.AddCommand(
		cli.courseListCmd(),
		cli.courseCreateCmd(),
		cli.courseEditCmd(),
		cli.courseDeleteCmd(),
		cli.courseOptionsCmd(),
	)
	return cmd
}

// courseFlags are the fields of a course draft settable from the command line.
type courseFlags struct {
	values course.Draft
	file   string
}

func (f *courseFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.values.Title, "title", "", "course title")
	flags.StringVar(&f.values.Code, "code", "", "course code, eg. CSC201")
	flags.StringVar(&f.values.CreditUnits, "credit-units", "", "number of credit units")
	flags.StringVar(&f.values.Description, "description", "", "description")
	flags.StringVar(&f.values.Lecturer, "lecturer", "", "lecturer id (see courses options)")
	flags.StringVar(&f.values.Department, "department", "", "department id (see courses options)")
	flags.StringVar(&f.values.Level, "level", "", "level, eg. ND1")
	flags.StringVar(&f.values.Semester, "semester", "", "semester: first or second")
	flags.StringVarP(&f.file, "file", "f", "", "read the course from a YAML file; flags override its values")
}

// apply fills d from the file, then from the flags given.
func (f *courseFlags) apply(cmd *cobra.Command, d *course.Draft) error {
	if f.file != "" {
		if err := readYAML(f.file, d); err != nil {
			return err
		}
	}
	setFlag(cmd, "title", &d.Title, f.values.Title)
	setFlag(cmd, "code", &d.Code, f.values.Code)
	setFlag(cmd, "credit-units", &d.CreditUnits, f.values.CreditUnits)
	setFlag(cmd, "description", &d.Description, f.values.Description)
	setFlag(cmd, "lecturer", &d.Lecturer, f.values.Lecturer)
	setFlag(cmd, "department", &d.Department, f.values.Department)
	setFlag(cmd, "level", &d.Level, f.values.Level)
	setFlag(cmd, "semester", &d.Semester, f.values.Semester)
	return nil
}

func (cli *commandLine) courseListCmd() *cobra.Command {
	var filter course.QueryFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List courses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ed := cli.courses.NewEditor(cli.deps())
			if err := ed.Mount(ctx); err != nil {
				return err
			}
			return cli.printCourses(cmd, course.Filter(ed.Store.Records(), filter))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Level, "level", "", "only courses of this level")
	flags.StringVar(&filter.Department, "department", "", "only courses of this department id")
	flags.StringVarP(&filter.Search, "search", "s", "", "only courses whose title or code contains this")
	return cmd
}

func (cli *commandLine) courseCreateCmd() *cobra.Command {
	var f courseFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course",
		Example: `  masomo-admin courses create --title Algorithms --code CSC201 --credit-units 3 \
    --lecturer 5f1d... --department 5f1c... --level ND1
  masomo-admin courses create -f course.yaml --code CSC202`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ed := cli.courses.NewEditor(cli.deps())
			if err := f.apply(cmd, ed.New()); err != nil {
				return err
			}
			c, err := ed.Submit(ctx)
			if err != nil {
				return err
			}
			return cli.printCourses(cmd, []course.Course{c})
		},
	}
	f.register(cmd)
	return cmd
}

func (cli *commandLine) courseEditCmd() *cobra.Command {
	var f courseFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a course",
		Long:  "Edit a course. Only the given fields change; the changes are shown for confirmation before being sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ed := cli.courses.NewEditor(cli.deps())
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
			if ok, err := cli.confirmEdit(ctx, "course "+args[0], before, *draft); err != nil || !ok {
				return err
			}

			c, err := ed.Submit(ctx)
			if err != nil {
				return err
			}
			return cli.printCourses(cmd, []course.Course{c})
		},
	}
	f.register(cmd)
	return cmd
}

func (cli *commandLine) courseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a course",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed := cli.courses.NewEditor(cli.deps())
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

func (cli *commandLine) courseOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the lecturers, departments, levels and semesters a course can refer to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := cli.courses.FormOptions(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(opts, func(w io.Writer) {
				fprintRow(w, "KIND", "ID", "NAME")
				for _, l := range opts.Lecturers {
					fprintRow(w, "lecturer", l.ID, l.Name)
				}
				for _, d := range opts.Departments {
					fprintRow(w, "department", d.ID, d.Name)
				}
				for _, lvl := range opts.Levels {
					fprintRow(w, "level", lvl, lvl)
				}
				for _, s := range opts.Semesters {
					fprintRow(w, "semester", s, s)
				}
			})
		},
	}
}

// printCourses prints courses, resolving lecturer and department names in the table format.
func (cli *commandLine) printCourses(cmd *cobra.Command, courses []course.Course) error {
	var names map[string]string
	if cli.output == outputTable {
		opts, err := cli.courses.FormOptions(cmd.Context())
		if err != nil {
			cli.logger.Warn("loading course options", err)
		}
		names = opts.Names()
	}

	return cli.print(courses, func(w io.Writer) {
		fprintRow(w, "ID", "CODE", "TITLE", "UNITS", "LECTURER", "DEPARTMENT", "LEVEL", "SEMESTER")
		for _, c := range courses {
			fprintRow(w,
				c.ID, c.Code, c.Title, c.CreditUnits,
				orDash(c.Lecturer.Resolve(names)),
				orDash(c.Department.Resolve(names)),
				orDash(c.Level.Name()),
				orDash(c.Semester),
			)
		}
	})
}
