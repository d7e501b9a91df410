// File: cmd/ncrelay/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ncrelay entry point: netcat-friendly TCP relay in front of a text
// completion provider, driven from stdin.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/ncrelay/completion"
	"github.com/momentics/ncrelay/config"
	"github.com/momentics/ncrelay/server"
)

var (
	configPath string
	host       string
	port       int
	verbose    bool
	noConsole  bool
	cpu        int
)

var rootCmd = &cobra.Command{
	Use:   "ncrelay",
	Short: "TCP chat relay for netcat clients backed by a completion API",
	Long: `ncrelay accepts plain TCP clients (nc <host> <port>), forwards each
received turn to a text completion provider and writes the answer back.

Operator commands are read from stdin:
  mode ctrl|api|notice   switch how stdin lines are interpreted
  set <tokens> <temperature> <top_p> <frequency> <presence>
  list [-v]              show connected clients
  stats                  show counters
  exit                   stop the relay`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.Flags().StringVarP(&host, "host", "H", "", "IPv4 or IPv6 address to listen on")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&noConsole, "no-console", false, "do not read operator commands from stdin")
	rootCmd.Flags().IntVar(&cpu, "cpu", -1, "pin the event loop to this CPU (-1 disables)")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Listen.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Listen.Port = port
	}
	if verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	if noConsole {
		cfg.Console = false
	}
	if cmd.Flags().Changed("cpu") {
		cfg.CPU = cpu
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	addr, err := cfg.BindAddr()
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	completer := completion.New(cfg.Completion, completion.WithLogger(logger.Named("completion")))

	srvCfg := &server.Config{
		BindAddr:   addr,
		Backlog:    cfg.Listen.Backlog,
		BufferSize: cfg.BufferSize,
		MaxEvents:  cfg.MaxEvents,
		ControlFD:  -1,
		CPU:        cfg.CPU,
	}
	if cfg.Console {
		srvCfg.ControlFD = int(os.Stdin.Fd())
	}
	srv, err := server.New(srvCfg, completer,
		server.WithLogger(logger.Named("relay")),
		server.WithOutput(os.Stdout),
		server.WithParams(cfg.Params),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
