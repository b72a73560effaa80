package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	pkgerrors "github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/export"
	"github.com/campusmove/movplan/core/planner"
	"github.com/campusmove/movplan/storage/docstore/pgdoc"
)

var (
	gooseRunFunc = pgdoc.RunMigrations // mockable

	errHelp        = errors.New("help provided")
	errNotPostgres = errors.New("migrations only apply to the postgres document store")
)

type commandLine struct {
	conf        *core.Config
	out         io.Writer
	openDB      func() (*sql.DB, error)
	openPlanner func(ctx context.Context) (*planner.Planner, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]             - run a goose command on the document database")
	fmt.Fprintln(cli.out, "  export -format csv|xlsx -out DIR   - write the movement schedule report")
	fmt.Fprintln(cli.out, "  summary                            - print the weekly capacity summary")
	fmt.Fprintln(cli.out, "  mail -to ADDR[,ADDR] -format csv   - email the movement schedule report")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(cli.out)
	exportFormat := exportCmd.String("format", string(export.CSV), "The report format: csv or xlsx.")
	exportOut := exportCmd.String("out", ".", "The directory the report is written to.")

	mailCmd := flag.NewFlagSet("mail", flag.ContinueOnError)
	mailCmd.SetOutput(cli.out)
	mailTo := mailCmd.String("to", "", "Comma separated recipients.")
	mailFormat := mailCmd.String("format", string(export.CSV), "The report format: csv or xlsx.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		format, err := export.ParseFormat(*exportFormat)
		if err != nil {
			return err
		}
		return cli.export(format, *exportOut)
	case "summary":
		return cli.summary()
	case "mail":
		if err := mailCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if strings.TrimSpace(*mailTo) == "" {
			mailCmd.Usage()
			return errHelp
		}
		format, err := export.ParseFormat(*mailFormat)
		if err != nil {
			return err
		}
		return cli.mail(*mailTo, format)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	if cli.conf.Storage.Documents != core.DocumentsPostgres {
		return errNotPostgres
	}
	db, err := cli.openDB()
	if err != nil {
		return pkgerrors.Wrap(err, "opening database")
	}
	return gooseRunFunc(db, args[0], args[1:]...)
}

func (cli *commandLine) export(format export.Format, dir string) error {
	p, err := cli.openPlanner(context.Background())
	if err != nil {
		return pkgerrors.Wrap(err, "loading movements")
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return pkgerrors.Wrap(err, "creating output directory")
	}
	path := filepath.Join(dir, p.ExportFilename(format))
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(err, "creating report file")
	}
	defer f.Close()

	toast, err := p.Export(f, format)
	if err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return pkgerrors.Wrap(err, "closing report file")
	}
	fmt.Fprintf(cli.out, "%s: %s\n", toast.Message, path)
	return nil
}

func (cli *commandLine) summary() error {
	p, err := cli.openPlanner(context.Background())
	if err != nil {
		return pkgerrors.Wrap(err, "loading movements")
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tMOVEMENTS\tSTUDENTS\tCAPACITY\tREMAINING\tSTATUS\t")
	for _, ds := range p.WeeklySummary() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			ds.Day, ds.Movements, ds.TotalStudents, ds.TotalBusCapacity, ds.RemainingCapacity, ds.Status, ds.Message)
	}
	return w.Flush()
}

func (cli *commandLine) mail(to string, format export.Format) error {
	addrs, err := mail.ParseAddressList(to)
	if err != nil {
		return pkgerrors.Wrap(err, "parsing recipients")
	}
	recipients := make([]mail.Address, 0, len(addrs))
	for _, addr := range addrs {
		recipients = append(recipients, *addr)
	}

	p, err := cli.openPlanner(context.Background())
	if err != nil {
		return pkgerrors.Wrap(err, "loading movements")
	}
	toast, err := p.MailExport(recipients, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, toast.Message)
	return nil
}
