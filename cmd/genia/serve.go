package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genia-lsp/genia/internal/log"
	"github.com/genia-lsp/genia/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wizard in the browser",
	Long: `Serve the three-step wizard on a local address. Open the printed
address in a browser.

The server keeps one session and is meant for a single user on this machine.
Stop it with Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		session, _, err := newSession(loadUserConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitUsage)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(session, server.WithLogger(log.Default()))
		err = srv.ListenAndServe(ctx, serveAddr, func(addr net.Addr) {
			printInfof("GenIA.lsp running at http://%s\n", addr)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitGeneral)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddr, "Address to listen on")
}
