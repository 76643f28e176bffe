package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	dbPath     string
	httpAddr   string

	rootCmd = &cobra.Command{
		Use:   "zhamesh",
		Short: "Track Zigbee mesh topology and link quality from a Home Assistant ZHA hub",
		Long: `zhamesh polls the ZHA device list over the Home Assistant websocket API,
reconciles the reported neighbor tables into a topology, and records link
quality observations and offline devices to SQLite.`,
		SilenceUsage: true,
		RunE:         runMonitor,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zhamesh %s (%s)\n", version, runtime.Version())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search $ZHAMESH_CONFIG, ./zhamesh.yaml, XDG and /etc)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides database.path)")
	rootCmd.Flags().StringVar(&httpAddr, "addr", "", "HTTP listen address (overrides http.addr)")

	rootCmd.AddCommand(versionCmd)
}
