// Command sauceplot is the host-side toolpath compiler and streamer (spec
// §2, C7/C8): it turns a polyline drawing into SSG lines and streams them
// to a controller over a websocket under the sliding-window protocol.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saucerun/ssgcore/internal/compiler"
	"github.com/saucerun/ssgcore/internal/config"
	"github.com/saucerun/ssgcore/internal/ssg"
	"github.com/saucerun/ssgcore/internal/streamer"
	"github.com/saucerun/ssgcore/internal/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "sauceplot",
		Short: "Compile and stream a drawing to a sauce-plotting controller",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (defaults to built-in scenario values)")

	root.AddCommand(
		newCompileCmd(&configPath),
		newStreamCmd(&configPath),
		newStatusCmd(),
		newHomeCmd(),
	)
	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

func newCompileCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compile <drawing.json>",
		Short: "Compile a polyline drawing into an SSG line sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			drawing, err := compiler.ParseDrawingDoc(raw, cfg.Compiler())
			if err != nil {
				return err
			}
			if drawing.RapidFeed == 0 {
				drawing.RapidFeed = cfg.RapidFeed
			}
			lines, err := compiler.Compile(drawing, cfg.Compiler())
			if err != nil {
				return err
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			for _, l := range lines {
				fmt.Fprintln(w, l.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write lines to this file instead of stdout")
	return cmd
}

func newStreamCmd(configPath *string) *cobra.Command {
	var url string
	var resume bool
	cmd := &cobra.Command{
		Use:   "stream <drawing.json>",
		Short: "Compile a drawing and stream it to a running controller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			drawing, err := compiler.ParseDrawingDoc(raw, cfg.Compiler())
			if err != nil {
				return err
			}
			if drawing.RapidFeed == 0 {
				drawing.RapidFeed = cfg.RapidFeed
			}
			lines, err := compiler.Compile(drawing, cfg.Compiler())
			if err != nil {
				return err
			}

			conn, err := transport.Dial(url)
			if err != nil {
				return fmt.Errorf("sauceplot: dialing %s: %w", url, err)
			}
			defer conn.Close()

			s := streamer.New(lines, conn, cfg.StreamerConfig(), log)
			log.Info().Str("job", s.JobID().String()).Int("lines", len(lines)).Msg("streaming")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			go func() {
				for p := range s.Progress() {
					log.Info().
						Int("sent", p.LinesSent).
						Int("acked", p.LinesAcked).
						Int("retries", p.Retries).
						Int("failures", p.Failures).
						Str("state", string(p.State)).
						Msg("progress")
				}
			}()

			startSeq := uint64(1)
			if resume {
				startSeq, err = s.Resume(ctx)
				if err != nil {
					return fmt.Errorf("sauceplot: resume: %w", err)
				}
				log.Info().Uint64("resume_from", startSeq).Msg("resuming")
			}
			return s.RunFrom(ctx, startSeq)
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8420/ssg", "controller websocket URL")
	cmd.Flags().BoolVar(&resume, "resume", false, "query M408 and resume from the controller's last acked sequence")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the controller's current status (M408)",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := transport.Dial(url)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.WriteLine(ssg.Line{Op: ssg.OpReportStatus}.String()); err != nil {
				return err
			}
			line, err := conn.ReadLine(2 * time.Second)
			if err != nil {
				return err
			}
			reply, err := ssg.ParseReply(line)
			if err != nil {
				return err
			}
			fmt.Println(reply.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8420/ssg", "controller websocket URL")
	return cmd
}

func newHomeCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "home",
		Short: "Send G28 and wait for the controller to finish homing",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := transport.Dial(url)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.WriteLine(ssg.Line{Seq: 1, SeqGiven: true, Op: ssg.OpHome}.String()); err != nil {
				return err
			}
			line, err := conn.ReadLine(15 * time.Second)
			if err != nil {
				return err
			}
			reply, err := ssg.ParseReply(line)
			if err != nil {
				return err
			}
			fmt.Println(reply.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8420/ssg", "controller websocket URL")
	return cmd
}
