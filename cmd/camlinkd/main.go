package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/altiplano-labs/camlink"
	"github.com/altiplano-labs/camlink/internal/cliconfig"
)

const helpBanner = `
  ___   __   _  _  __    __  __ _  __ _  ____
 / __) / _\ ( \/ )(  )  (  )(  ( \(  / )(    \
( (__ /    \/ \/ \/ (_/\ )( /    / )  (  ) D (
 \___)\_/\_/\_)(_/\____/(__)\_)__)(__\_)(____/
`

const helpDescription = `
Serve camera capture and image transfer commands over a serial link.

Listens for command lines on the port, captures JPEG stills with the
attached camera (or a fallback image), and ships them frame by frame
with acknowledgment and retransmission of lost tails.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  camlinkd /dev/ttyUSB0
  camlinkd /dev/ttyAMA0 --baud 115200 --rtscts --image-dir /var/lib/camlink
  camlinkd /dev/ttyUSB0 --no-camera --fallback-image /usr/share/camlink/test.jpg
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
	var noCamera bool

	root := &cobra.Command{
		Use:     "camlinkd <port>",
		Short:   "Serve camera capture and image transfer commands over a serial link",
		Long:    longHelp,
		Example: exampleUsage,
		Args:    cobra.MaximumNArgs(1),
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Port = args[0]
			}

			// Build set of changed flags so file and env values never
			// override an explicit flag.
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

			if noCamera {
				cfg.UseCamera = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := camlink.RunServer(ctx, cfg)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := root.Flags()
	f.IntVar(&cfg.Baud, "baud", cfg.Baud, "serial line speed")
	f.BoolVar(&cfg.RTSCTS, "rtscts", cfg.RTSCTS, "enable RTS/CTS hardware flow control")
	f.BoolVar(&cfg.XONXOFF, "xonxoff", cfg.XONXOFF, "enable XON/XOFF software flow control")
	f.IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "payload write granularity in bytes")
	f.DurationVar(&cfg.ChunkDelay, "chunk-delay", cfg.ChunkDelay, "base inter-chunk pacing delay")
	f.DurationVar(&cfg.ResponseTimeout, "response-timeout", cfg.ResponseTimeout, "per-exchange wait bound")
	f.DurationVar(&cfg.TransferTimeout, "transfer-timeout", cfg.TransferTimeout, "overall transfer wait bound")
	f.BoolVar(&cfg.AckEnabled, "ack", cfg.AckEnabled, "require acknowledgment and repair lost tails")
	f.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "correction rounds before a transfer is abandoned")
	f.BoolVar(&noCamera, "no-camera", false, "disable the camera, serve the fallback image only")
	f.StringVar(&cfg.FallbackImage, "fallback-image", cfg.FallbackImage, "image substituted when capture fails")
	f.DurationVar(&cfg.CaptureTimeout, "capture-timeout", cfg.CaptureTimeout, "capture subprocess bound")
	f.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "directory for captured images")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&cfgPath, "config", "", "config file path (default $HOME/.camlink/config.toml)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
