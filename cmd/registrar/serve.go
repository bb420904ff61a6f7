package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/collegeapp/registrar/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		bind        string
		allowSubnet string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for PORT env var if flag not set
			if port == 0 {
				if envPort := os.Getenv("PORT"); envPort != "" {
					if _, err := fmt.Sscanf(envPort, "%d", &port); err != nil {
						return fmt.Errorf("invalid PORT environment variable %q: %w", envPort, err)
					}
				}
			}
			if port == 0 {
				return fmt.Errorf("--port flag or PORT environment variable is required")
			}

			if bind != "" {
				if ip := net.ParseIP(bind); ip == nil {
					return fmt.Errorf("invalid bind address: %s", bind)
				}
			}

			var allowedNet *net.IPNet
			if allowSubnet != "" {
				_, parsedNet, err := net.ParseCIDR(allowSubnet)
				if err != nil {
					return fmt.Errorf("invalid allow-subnet CIDR: %s", allowSubnet)
				}
				allowedNet = parsedNet
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.db.Close()

			if (bind == "" || bind == "0.0.0.0" || bind == "::") && allowSubnet == "" {
				log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
			}

			log.Info().
				Str("version", version).
				Int("port", port).
				Str("bind", bind).
				Str("allow_subnet", allowSubnet).
				Str("database", dbPath).
				Msg("Starting Registrar")

			server := web.NewServer(a.db, a.prims, a.relations, a.viewer, port, bind, allowedNet, a.runtime)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigChan
				log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
				cancel()
			}()

			if err := server.Start(ctx); err != nil {
				return fmt.Errorf("server error: %w", err)
			}

			log.Info().Msg("Registrar stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (required, or set PORT env var)")
	cmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	cmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	return cmd
}
