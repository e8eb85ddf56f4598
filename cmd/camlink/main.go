package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/altiplano-labs/camlink"
	"github.com/altiplano-labs/camlink/internal/cliconfig"
)

const helpDescription = `
Fetch images from a remote camera endpoint over a serial link.

Each subcommand opens the port, issues one command line and, for
transfers, receives the framed payload with acknowledgment and
retransmission of lost tails.
`

var exampleUsage = strings.TrimSpace(`
  camlink snapshot /dev/ttyUSB0 --resolution FULL_HD -o photo.jpg
  camlink capture /dev/ttyUSB0 --resolution THUMBNAIL
  camlink fetch /dev/ttyUSB0
  camlink fetch /dev/ttyUSB0 --path /var/lib/camlink/last.jpg
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var fetchPath string

	// prepare finishes configuration for a subcommand: positional port,
	// then file and env values under the changed-flags precedence.
	prepare := func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Port = args[0]
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
		if len(args) == 1 {
			changed["port"] = true
		}

		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}
		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}
		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}
		return cfg.Validate()
	}

	root := &cobra.Command{
		Use:     "camlink",
		Short:   "Fetch images from a remote camera endpoint over a serial link",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	snapshot := &cobra.Command{
		Use:   "snapshot <port>",
		Short: "Capture at the remote endpoint and transfer the image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, args); err != nil {
				return err
			}
			saved, res, err := camlink.Snapshot(cfg, cfg.Resolution, cfg.Output)
			if err != nil {
				return err
			}
			printResult(saved, res)
			return nil
		},
	}

	capture := &cobra.Command{
		Use:   "capture <port>",
		Short: "Capture at the remote endpoint without transferring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, args); err != nil {
				return err
			}
			size, err := camlink.Capture(cfg, cfg.Resolution)
			if err != nil {
				return err
			}
			fmt.Printf("captured %d bytes, stored remotely\n", size)
			return nil
		},
	}

	fetch := &cobra.Command{
		Use:   "fetch <port>",
		Short: "Transfer a stored image (most recent capture by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prepare(cmd, args); err != nil {
				return err
			}
			saved, res, err := camlink.Fetch(cfg, fetchPath, cfg.Output)
			if err != nil {
				return err
			}
			printResult(saved, res)
			return nil
		},
	}
	fetch.Flags().StringVar(&fetchPath, "path", "LAST", "remote image path, LAST for the most recent capture")

	pf := root.PersistentFlags()
	pf.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial line speed")
	pf.BoolVar(&cfg.RTSCTS, "rtscts", cfg.RTSCTS, "enable RTS/CTS hardware flow control")
	pf.BoolVar(&cfg.XONXOFF, "xonxoff", cfg.XONXOFF, "enable XON/XOFF software flow control")
	pf.DurationVar(&cfg.ResponseTimeout, "response-timeout", cfg.ResponseTimeout, "per-exchange wait bound")
	pf.DurationVar(&cfg.TransferTimeout, "transfer-timeout", cfg.TransferTimeout, "overall transfer wait bound")
	pf.BoolVar(&cfg.AckEnabled, "ack", cfg.AckEnabled, "acknowledge and repair lost tails")
	pf.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "correction rounds before a transfer is abandoned")
	pf.StringVarP(&cfg.Resolution, "resolution", "r", cfg.Resolution, "capture resolution name")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output path (default timestamped name in image dir)")
	pf.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "directory for received images")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&cfgPath, "config", "", "config file path (default $HOME/.camlink/config.toml)")

	root.AddCommand(snapshot, capture, fetch)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printResult(saved string, res *camlink.Result) {
	verdict := "jpeg markers intact"
	if !res.JPEGValid {
		verdict = "jpeg markers missing"
	}
	fmt.Printf("saved %s (%d bytes, %d corrections, %s)\n",
		saved, len(res.Payload), res.Corrections, verdict)
}
