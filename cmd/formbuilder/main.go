package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/config"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/editor"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/paths"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/store"
)

const version = "0.1.0"

// CLI is the command line of formbuilder.
type CLI struct {
	Config  string `help:"Config file (json, toml or yaml)." short:"c" type:"path"`
	Store   string `help:"Store path, overrides config."`
	Backend string `help:"Store backend: file, sqlite or memory."`
	Debug   bool   `help:"Debug logging." short:"d"`

	List      ListCmd      `cmd:"" help:"List saved forms."`
	Show      ShowCmd      `cmd:"" help:"Show the fields of a form."`
	New       NewCmd       `cmd:"" help:"Create an empty form."`
	Add       AddCmd       `cmd:"" help:"Add a field to a form."`
	Remove    RemoveCmd    `cmd:"" help:"Remove a field and its children."`
	Up        UpCmd        `cmd:"" help:"Move a field one place up."`
	Down      DownCmd      `cmd:"" help:"Move a field one place down."`
	Move      MoveCmd      `cmd:"" help:"Move a field to another section or position."`
	Label     LabelCmd     `cmd:"" help:"Set the label of a field."`
	Rule      RuleCmd      `cmd:"" help:"Set or remove a validation rule."`
	Option    OptionCmd    `cmd:"" help:"Edit the options of a dropdown or radio field."`
	Condition ConditionCmd `cmd:"" help:"Edit the visibility conditions of a field."`
	Delete    DeleteCmd    `cmd:"" help:"Delete a saved form."`
	Preview   PreviewCmd   `cmd:"" help:"Fill in a form interactively."`
	Query     QueryCmd     `cmd:"" help:"Run a jq expression over the saved forms."`
	Watch     WatchCmd     `cmd:"" help:"Print the form list whenever the store file changes."`
	Backups   BackupsCmd   `cmd:"" help:"List backups of the store file."`
	Restore   RestoreCmd   `cmd:"" help:"Restore the store file from a backup."`
	Types     TypesCmd     `cmd:"" help:"List field types."`
	Version   VersionCmd   `cmd:"" help:"Print version."`
}

// app is bound into every command's Run.
type app struct {
	cfg     *config.Config
	backend store.Backend
	editor  *editor.Editor
	out     io.Writer
}

// open loads the library on first use.
func (a *app) open() (*editor.Editor, error) {
	if a.editor != nil {
		return a.editor, nil
	}
	backend, err := store.Open(a.cfg.Store)
	if err != nil {
		return nil, err
	}
	lib := store.NewLibrary(backend)
	lib.Load()
	a.backend = backend
	a.editor = editor.New(lib)
	return a.editor, nil
}

func (a *app) close() {
	if a.editor != nil {
		if err := a.editor.Library().Close(); err != nil {
			L_warn("failed to close store", "error", err)
		}
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("formbuilder"),
		kong.Description("Build, store and fill in dynamic forms."),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(&cli)
	ctx.FatalIfErrorf(err)

	a := &app{cfg: cfg, out: os.Stdout}
	err = ctx.Run(a)
	a.close()
	ctx.FatalIfErrorf(err)
}

// loadConfig reads the config, applies command line overrides and sets up
// logging.
func loadConfig(cli *CLI) (*config.Config, error) {
	Init(&Config{Level: LevelWarn, TimeFormat: "15:04:05"})

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cli.Backend != "" && cli.Backend != cfg.Store.Backend {
		cfg.Store.Backend = cli.Backend
		cfg.Store.Path = ""
		switch cli.Backend {
		case config.BackendFile:
			cfg.Store.Path, err = paths.DefaultFormsPath()
		case config.BackendSQLite:
			cfg.Store.Path, err = paths.DefaultDatabasePath()
		}
		if err != nil {
			return nil, err
		}
	}
	if cli.Store != "" {
		if cfg.Store.Path, err = paths.ExpandTilde(cli.Store); err != nil {
			return nil, err
		}
	}

	level, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cli.Debug {
		level = LevelDebug
	}
	Init(&Config{Level: level, TimeFormat: "15:04:05", ShowCaller: cli.Debug})

	L_debug("config loaded", "backend", cfg.Store.Backend, "path", cfg.Store.Path)
	return cfg, nil
}
