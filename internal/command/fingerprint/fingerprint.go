package fingerprint

import (
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE...",
		Short: "Print content fingerprints of the images",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	// Fingerprinting doesn't touch the backend, so nothing is created here
	for _, ref := range imagecache.Files(args...) {
		fp, err := cache.Fingerprint(ref)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", fp, ref)
	}

	return nil
}
