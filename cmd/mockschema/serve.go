package main

import (
	"github.com/spf13/cobra"

	"github.com/tordrt/mockschema/internal/server"
)

var (
	serveAddr string
	serveFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the schema editor HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, file := cfg.Server.Addr, cfg.Server.File
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		if cmd.Flags().Changed("file") {
			file = serveFile
		}

		ws, diags, err := server.OpenWorkspace(file)
		if err != nil {
			return err
		}
		printDiagnostics(diags)

		r, min, err := newRunner(cmd)
		if err != nil {
			return err
		}
		srv := server.New(server.Options{
			Addr:       addr,
			Mode:       cfg.Server.Mode,
			Runner:     r,
			MinVersion: min,
		}, ws)
		return srv.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config: :8080)")
	serveCmd.Flags().StringVar(&serveFile, "file", "", "schema file to edit (default from config: schema.json)")
	addRunnerFlags(serveCmd)
}
