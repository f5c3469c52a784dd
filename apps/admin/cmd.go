package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/core/crud"
	"github.com/trezcool/masomo-dashboard/core/summary"
	notifysvc "github.com/trezcool/masomo-dashboard/services/notify"
	"github.com/trezcool/masomo-dashboard/storage/restapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type (
	authenticator interface {
		Login(ctx context.Context, creds restapi.Credentials) (string, error)
	}

	tokenStore interface {
		Save(token string) (core.Session, error)
		Session() (core.Session, error)
		Clear() error
	}
)

type commandLine struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	courses       *course.Service
	announcements *announcement.Service
	stats         summary.StatsRepository
	auth          authenticator
	tokens        tokenStore
	validate      crud.Validator
	translator    ut.Translator
	logger        core.Logger

	// set per run
	output    string
	yes       bool
	noColor   bool
	notifier  core.Notifier
	confirmer core.Confirmer
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.errOut)
	return root.ExecuteContext(ctx)
}

func (cli *commandLine) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masomo-admin",
		Short: "Manage the courses and announcements of Masomo",
		Long: `masomo-admin edits the courses and announcements of the Masomo API from a terminal.

Reading is open to everyone. Announcements can only be changed once logged in:
  masomo-admin login --username admin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cli.output {
			case outputTable, outputJSON, outputYAML:
			default:
				return errors.Errorf("unknown output format %q (want table, json or yaml)", cli.output)
			}
			cli.notifier = notifysvc.NewConsoleNotifier(cli.errOut, !cli.noColor && isTerminal(cli.errOut))
			cli.confirmer = notifysvc.NewPromptConfirmer(cli.in, cli.errOut, cli.yes)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.output, "output", "o", outputTable, "output format: table, json or yaml")
	flags.BoolVarP(&cli.yes, "yes", "y", false, "answer yes to every confirmation")
	flags.BoolVar(&cli.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(
		cli.coursesCmd(),
		cli.announcementsCmd(),
		cli.statsCmd(),
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.whoamiCmd(),
	)
	return cmd
}

func (cli *commandLine) deps() crud.Deps {
	return crud.Deps{
		Validate:   cli.validate,
		Translator: cli.translator,
		Notifier:   cli.notifier,
		Confirmer:  cli.confirmer,
		Logger:     cli.logger,
	}
}

// print writes v in the selected format. table renders the default one.
func (cli *commandLine) print(v interface{}, table func(w io.Writer)) error {
	switch cli.output {
	case outputJSON:
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		return writeYAML(cli.out, v)
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	table(w)
	return w.Flush()
}

// writeYAML encodes v with its JSON field names, references and nullable values included.
func writeYAML(out io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "encoding output")
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding output")
	}
	return enc.Close()
}

// readYAML decodes the draft file at path into v.
func readYAML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

// draftDiff returns a unified diff of two drafts in their YAML form, empty when they are equal.
func draftDiff(name string, before, after interface{}) (string, error) {
	a, err := yaml.Marshal(before)
	if err != nil {
		return "", errors.Wrap(err, "encoding draft")
	}
	b, err := yaml.Marshal(after)
	if err != nil {
		return "", errors.Wrap(err, "encoding draft")
	}
	if bytes.Equal(a, b) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: name,
		ToFile:   name + " (edited)",
		Context:  1,
	})
}

// confirmEdit shows the changes about to be sent and asks for a go-ahead.
// It returns false without asking when nothing changed.
func (cli *commandLine) confirmEdit(ctx context.Context, name string, before, after interface{}) (bool, error) {
	diff, err := draftDiff(name, before, after)
	if err != nil {
		return false, err
	}
	if diff == "" {
		cli.notifier.Notify(core.Info("Nothing to change."))
		return false, nil
	}
	_, _ = fmt.Fprint(cli.errOut, diff)

	ok, err := cli.confirmer.Confirm(ctx, "Apply these changes?")
	if err != nil {
		return false, errors.Wrap(err, "confirming changes")
	}
	if !ok {
		cli.notifier.Notify(core.Info("Edit cancelled."))
	}
	return ok, nil
}

// setFlag copies a string flag into dst when it was given on the command line.
func setFlag(cmd *cobra.Command, name string, dst *string, value string) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func fprintRow(w io.Writer, cols ...interface{}) {
	for i, c := range cols {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, c)
	}
	_, _ = fmt.Fprintln(w)
}
