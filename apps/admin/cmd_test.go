package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/export"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
	emailsvc "github.com/campusmove/movplan/services/email"
	testutil "github.com/campusmove/movplan/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	emailsvc.ResetSentMessages()
	conf := testutil.Config(t)
	env := testutil.NewEnv(t, emailsvc.NewConsoleServiceMock(conf, new(testutil.Logger)))
	out := new(bytes.Buffer)

	// start CLI
	cli := &commandLine{
		conf: env.Conf,
		out:  out,
		openDB: func() (*sql.DB, error) {
			return nil, nil
		},
		openPlanner: func(ctx context.Context) (*planner.Planner, error) {
			return env.Planner, env.Planner.Refresh(ctx)
		},
	}
	return cli, env, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "mail without recipients", args: []string{"mail"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"export", "-lol"}, wantErr: errHelp},
		{name: "unknown format", args: []string{"export", "-format", "pdf"}, wantErrStr: `unsupported export format "pdf"`},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	// only the postgres document store has migrations
	err := cli.run([]string{"admin", "migrate", "up"})
	assert.Equal(t, errNotPostgres, err)

	cli.conf.Storage.Documents = core.DocumentsPostgres

	var ran []string
	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, strings.Join(append([]string{command}, args...), " "))
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "movement_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	assert.Equal(t, []string{"up", "up-to 1", "down", "status", "create movement_index sql"}, ran)
}

func Test_commandLine_export(t *testing.T) {
	cli, env, out := setup(t)
	env.AddMovement(t, movement.Monday, "CS101", 30)
	dir := filepath.Join(t.TempDir(), "reports")

	require.NoError(t, cli.run([]string{"admin", "export", "-out", dir}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "movement-schedule-"))
	assert.True(t, strings.HasSuffix(files[0].Name(), ".csv"))

	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, export.CSVString(env.Planner.Movements.Items()), string(data))
	assert.Contains(t, out.String(), planner.MsgExported)
}

func Test_commandLine_summary(t *testing.T) {
	cli, env, out := setup(t)
	env.AddBus(t, "Coach", 50)
	env.AddMovement(t, movement.Monday, "CS101", 30)
	env.AddMovement(t, movement.Monday, "CS102", 25)

	require.NoError(t, cli.run([]string{"admin", "summary"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "DAY"))
	assert.Equal(t, []string{"Monday", "2", "55", "50", "-5", "Overbooked", "Exceeds", "capacity", "by", "5", "students"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Friday", "0", "0", "50", "50", "Available"}, strings.Fields(lines[5]))
}

func Test_commandLine_mail(t *testing.T) {
	cli, env, out := setup(t)
	env.AddMovement(t, movement.Monday, "CS101", 30)

	err := cli.run([]string{"admin", "mail", "-to", "not an address"})
	assert.Error(t, err)

	require.NoError(t, cli.run([]string{"admin", "mail", "-to", "dean@example.com, Ops <ops@example.com>"}))
	assert.Contains(t, out.String(), planner.MsgMailed)

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Len(t, sent[0].To, 2)
	require.Len(t, sent[0].Attachments, 1)
	assert.True(t, strings.HasSuffix(sent[0].Attachments[0].Filename, ".csv"))
}
