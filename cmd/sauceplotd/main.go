// Command sauceplotd is the controller process (spec §2, C1-C6): it
// serves one websocket client, runs the state machine and motion planner
// against simulated step/dir IO and endstops, and streams telemetry back.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saucerun/ssgcore/internal/config"
	"github.com/saucerun/ssgcore/internal/controller"
	"github.com/saucerun/ssgcore/internal/motion"
	"github.com/saucerun/ssgcore/internal/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "sauceplotd",
		Short: "Motion controller for the sauce-plotting gantry",
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Serve the SSG protocol over a websocket and run the motion executor",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
				With().Timestamp().Logger().Level(level)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(addr, cfg.Controller(), log)
		},
	}
	run.Flags().StringVar(&configPath, "config", "", "YAML configuration file (defaults to built-in scenario values)")
	run.Flags().StringVar(&addr, "addr", ":8420", "listen address for the SSG websocket endpoint")
	run.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(run)
	return root
}

func serve(addr string, cfg controller.Config, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ssg", func(w http.ResponseWriter, r *http.Request) {
		conn, err := transport.Accept(w, r)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		io := motion.NewSimIO()
		ex, ey := &motion.SimEndstop{}, &motion.SimEndstop{}
		c := controller.New(cfg, io, ex, ey, log)
		c.SetHomePoll(motion.SimHomeSequence(ex, ey))

		connLog := log.With().Str("remote", r.RemoteAddr).Logger()
		connLog.Info().Msg("host connected")
		if err := controller.Run(c, conn, 20*time.Millisecond); err != nil {
			connLog.Error().Err(err).Msg("connection ended")
			return
		}
		connLog.Info().Msg("host disconnected")
	})

	log.Info().Str("addr", addr).Msg("sauceplotd listening")
	return http.ListenAndServe(addr, mux)
}
