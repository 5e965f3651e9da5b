package command

import (
	"github.com/cirruslabs/imagecache/internal/command/fingerprint"
	"github.com/cirruslabs/imagecache/internal/command/get"
	"github.com/cirruslabs/imagecache/internal/command/info"
	"github.com/cirruslabs/imagecache/internal/command/list"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/command/purge"
	"github.com/cirruslabs/imagecache/internal/command/put"
	"github.com/cirruslabs/imagecache/internal/command/remove"
	"github.com/cirruslabs/imagecache/internal/logginglevel"
	"github.com/cirruslabs/imagecache/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var debug bool

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imagecache",
		Short:         "Content-addressed cache for per-image results",
		Version:       version.FullVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if debug {
				logginglevel.Level.SetLevel(zapcore.DebugLevel)
			}

			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	opencache.AddFlags(cmd)

	cmd.AddCommand(
		fingerprint.NewCommand(),
		put.NewCommand(),
		get.NewCommand(),
		remove.NewCommand(),
		list.NewCommand(),
		purge.NewCommand(),
		info.NewCommand(),
	)

	return cmd
}
