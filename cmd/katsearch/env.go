package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/config"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/item"
	"github.com/kk-code-lab/katsearch/internal/session"
)

var errInterrupted = errors.New("interrupted")

// cliEnv is shared by every command of one invocation. It is filled by the
// root command's PersistentPreRunE.
type cliEnv struct {
	cfgFile string

	cfg     config.Config
	session *session.Session
	deps    item.Deps

	// store replaces the session file, for tests.
	store  session.Store
	loaded bool
	closed bool
}

func (e *cliEnv) load(cmd *cobra.Command) error {
	if e.loaded {
		return nil
	}
	cfg, err := config.Load(e.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg.ApplyLogging()
	e.cfg = cfg

	store := e.store
	if store == nil {
		path := cfg.SessionFile
		if path == "" {
			if path, err = session.DefaultPath(); err != nil {
				debuglog.Logf("cli: no session file: %v", err)
			}
		}
		if path != "" {
			store = session.YAMLStore{Path: path}
		}
	}
	sess, err := session.Open(store)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "katsearch: ignoring saved session: %v\n", err)
	}
	e.session = sess
	e.deps = item.Deps{Units: cfg.Units(), Locale: cfg.LocaleTag()}.WithDefaults()
	e.loaded = true
	return nil
}

func (e *cliEnv) engine() *catalog.Engine {
	opts := e.cfg.EngineOptions()
	opts.Identifier = e.deps.Identifier
	return catalog.NewEngine(opts)
}

// close saves the session once.
func (e *cliEnv) close() error {
	if e.session == nil || e.closed {
		return nil
	}
	e.closed = true
	return e.session.Close()
}
