package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/BrunoViet/swapdesk/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the swap form as a terminal in the browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		apiAddr, stop, err := apiAddress(ctx, remoteServer(cmd))
		if err != nil {
			return err
		}
		defer stop()

		var extra []string
		if flagConfig != "" {
			extra = append(extra, "--config", flagConfig)
		}
		if cfg.Log.File != "" {
			extra = append(extra, "--log-file", cfg.Log.File)
		}

		listenAddr := net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))
		fmt.Printf("swapdesk web UI: http://%s\n", listenAddr)

		webSrv := web.NewServer(listenAddr, apiAddr, log, extra...)
		errCh := make(chan error, 1)
		go func() { errCh <- webSrv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := webSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("web shutdown", zap.Error(err))
		}
		return <-errCh
	},
}

func init() {
	webCmd.Flags().Int("port", 8080, "HTTP port for the web terminal")
	webCmd.Flags().String("host", "localhost", "HTTP host for the web terminal")
	_ = v.BindPFlag("web.port", webCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("web.host", webCmd.Flags().Lookup("host"))
	rootCmd.AddCommand(webCmd)
}
