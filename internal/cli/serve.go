package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scbrown/cheeky/internal/ctxlog"
	"github.com/scbrown/cheeky/internal/explain"
	"github.com/scbrown/cheeky/internal/server"
	"github.com/scbrown/cheeky/internal/store"
	"github.com/spf13/cobra"
)

// explainCacheSize bounds the server's memo of recent explanations.
const explainCacheSize = 1024

var (
	serveAddr     string
	serveNoRecord bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server that explains invocations",
	Long: `Start an HTTP server with a JSON API at /api/v1/:

  POST   /api/v1/explain          {"command": "git add ."} -> explanation
  GET    /api/v1/commands         the catalog
  GET    /api/v1/commands/{name}  one catalog command
  GET    /api/v1/suggest?name=    similar command names
  GET    /api/v1/history          recorded explanations
  POST   /api/v1/history          record an entry (used by remote clients)
  DELETE /api/v1/history?before=  prune old entries
  GET    /api/v1/stats            history statistics
  GET    /api/v1/health           liveness check

Unknown commands answer 404 with {"error": ..., "suggestions": [...]}.
Explain requests are recorded in the local history database unless
record_history is false or --no-record is given. Set remote_url on other
machines to point their cheeky history at this server.`,
	Example: `  # Start server on default port
  cheeky serve

  # Start on a custom address with a custom catalog
  cheeky serve --addr localhost:9090 --catalog ./tools.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := ctxlog.FromContext(cmd.Context())

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		// The server always owns a local database; remote_url is for clients.
		s, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		srv := server.New(explain.NewExplainer(cat, explainCacheSize), server.Options{
			Store:  s,
			Record: recordHistory && !serveNoRecord,
			Logger: log,
		})

		addr := listenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		// Listen first so we can report the actual address.
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "cheeky serve listening on %s (%d commands)\n", ln.Addr(), cat.Len())

		// Graceful shutdown on SIGINT/SIGTERM.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(ln)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (host:port, default listen_addr or :7274)")
	serveCmd.Flags().BoolVar(&serveNoRecord, "no-record", false, "do not record explain requests")
	rootCmd.AddCommand(serveCmd)
}
