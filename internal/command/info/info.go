package info

import (
	"context"
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// usager is implemented by backends that can tell how much space they occupy
type usager interface {
	Usage(ctx context.Context) (uint64, error)
}

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print cache location and statistics",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	backend, err := cache.Backend(cmd.Context())
	if err != nil {
		return err
	}

	size, err := backend.Size(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "Location: %s\n", backend.Location())
	_, _ = fmt.Fprintf(out, "Entries:  %s\n", humanize.Comma(int64(size)))

	if usager, ok := backend.(usager); ok {
		usage, err := usager.Usage(cmd.Context())
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "Usage:    %s\n", humanize.Bytes(usage))
	}

	return nil
}
