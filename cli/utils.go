package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"go.viam.com/bezierplanner/config"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/curveio"
	"go.viam.com/bezierplanner/logging"
)

// env is what every command needs besides its own flags.
type env struct {
	cfg    *config.Config
	logger logging.Logger
}

// withEnv loads the config named by the global flags, builds a logger writing to the app's error
// writer, and hands both to action.
func withEnv(action func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		cfg := config.Default()
		if path := c.String(flagConfig); path != "" {
			if cfg, err = config.Read(path); err != nil {
				return err
			}
		}
		if c.Bool(flagDebug) {
			cfg.Log.Level = logging.DEBUG.String()
		}
		if path := c.String(flagLogFile); path != "" {
			cfg.Log.SetFile(path)
		}

		logger, closeLog, err := cfg.Log.NewLogger("bezierplan", c.App.ErrWriter)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, logger.Sync(), closeLog())
		}()
		return action(c, &env{cfg: cfg, logger: logger})
	}
}

// arg returns the i-th positional argument, named name in the error when it is missing.
func arg(c *cli.Context, i int, name string) (string, error) {
	if c.Args().Len() <= i {
		return "", errors.Errorf("missing argument <%s>; see %q", name, c.Command.HelpName+" --help")
	}
	return c.Args().Get(i), nil
}

// maxArgs rejects positional arguments past the first n. Flags placed after the file end up here,
// since flag parsing stops at the first positional argument.
func maxArgs(c *cli.Context, n int) error {
	if c.Args().Len() <= n {
		return nil
	}
	return errors.Errorf("unexpected argument %q; flags must come before the positional arguments, see %q",
		c.Args().Get(n), c.Command.HelpName+" --help")
}

// openCollection reads the curve file named by the first argument.
func openCollection(c *cli.Context, e *env) (*curveio.Store, *curve.Collection, *curve.NameAllocator, error) {
	path, err := arg(c, 0, "file")
	if err != nil {
		return nil, nil, nil, err
	}
	store := curveio.NewStore(path, e.logger.Sublogger("store"))
	coll := curve.NewCollection()
	names := &curve.NameAllocator{}
	if err := store.Open(coll, names); err != nil {
		return nil, nil, nil, err
	}
	return store, coll, names, nil
}

// printf prints a message with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a highlighted warning with a newline.
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	color.New(color.FgYellow, color.Bold).Fprintf(w, "Warning: "+format+"\n", a...)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
