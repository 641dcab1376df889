// ribbit runs one signed call against the Ribbit REST platform and prints
// the result.
//
// Credentials come from ribbit.yml, a .env file or RIBBIT_* environment
// variables; see the config package. With --username and --password the
// call is made as that user after a login.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/ribbitkit/config"
	"github.com/kbukum/ribbitkit/credentials"
	"github.com/kbukum/ribbitkit/httpclient"
	"github.com/kbukum/ribbitkit/logger"
	"github.com/kbukum/ribbitkit/observability"
	"github.com/kbukum/ribbitkit/operations"
	"github.com/kbukum/ribbitkit/session"
	"github.com/kbukum/ribbitkit/version"
)

const shutdownTimeout = 5 * time.Second

// errUsage makes main exit with status 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	if errors.Is(err, errUsage) || errors.Is(err, operations.ErrUsage) || errors.Is(err, operations.ErrUnknownOperation) {
		os.Exit(2)
	}
	os.Exit(1)
}

type flags struct {
	configFile string
	envFile    string
	endpoint   string
	username   string
	password   string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var f flags
	flagSet := pflag.NewFlagSet("ribbit", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.configFile, "config", "c", "", "path to ribbit.yml (default: searched)")
	flagSet.StringVar(&f.envFile, "env-file", "", "path to a .env file (default: searched)")
	flagSet.StringVar(&f.endpoint, "endpoint", "", "override the REST endpoint")
	flagSet.StringVarP(&f.username, "username", "u", "", "log in as this user before the call")
	flagSet.StringVarP(&f.password, "password", "p", "", "password for --username")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log every signed request")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return errUsage
	}
	if rest[0] == "version" {
		fmt.Fprintln(stdout, version.GetFullVersion())
		return nil
	}
	registry := operations.Default()
	if _, ok := registry.Lookup(rest[0]); !ok {
		return fmt.Errorf("%w: %q (run ribbit --help)", operations.ErrUnknownOperation, rest[0])
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Observability.ServiceName)
	logger.SetGlobalLogger(log)

	shutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	store := cfg.Store()
	client, err := httpclient.New(store, cfg.ClientConfig(), httpclient.WithLogger(log))
	if err != nil {
		return err
	}
	env := &operations.Env{
		Client:   client,
		Sessions: session.NewManager(client, store, session.WithLogger(log)),
	}

	if f.username != "" {
		if _, err := env.Sessions.Login(ctx, f.username, f.password); err != nil {
			return err
		}
	}

	out, err := registry.Run(ctx, env, rest[0], rest[1:])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func loadConfig(f flags) (*config.Config, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if f.endpoint != "" {
		cfg.Ribbit.Endpoint = credentials.WithTrailingSlash(f.endpoint)
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	var ops strings.Builder
	registry := operations.Default()
	for _, name := range registry.Names() {
		op, _ := registry.Lookup(name)
		fmt.Fprintf(&ops, "  %-11s %-28s %s\n", op.Name, op.Args, op.Summary)
	}

	fmt.Fprintf(w, `ribbit: signed calls against the Ribbit REST platform.

Usage:
  ribbit [flags] <operation> [args...]
  ribbit version

Operations:
%s
Relative URIs are resolved against the configured endpoint.

Examples:
  ribbit get users/42
  ribbit -u alice@example.com -p secret get media/example.com
  ribbit download media/example.com/greeting.mp3 greeting.mp3 audio/mpeg

Flags:
`, ops.String())
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
