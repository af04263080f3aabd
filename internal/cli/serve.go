package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/autotag/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing the classification engine.

Endpoints:
  GET  /health         Health check
  GET  /api/detectors  List the loaded detectors
  POST /api/classify   Classify commit messages
  POST /api/bump       Compute the next version
  POST /api/diff       Summarize a unified diff
  GET  /api/ws         WebSocket streaming classification`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().StringP("addr", "a", "127.0.0.1", "address to listen on")
	cmd.Flags().IntP("port", "p", 6142, "port to listen on")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	port, _ := cmd.Flags().GetInt("port")

	set, err := a.detectors()
	if err != nil {
		return err
	}

	listen := fmt.Sprintf("%s:%d", addr, port)
	srv := api.New(listen, set, api.WithLogger(a.log))
	return srv.ListenAndServe()
}
