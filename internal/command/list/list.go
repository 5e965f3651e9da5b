package list

import (
	"fmt"
	"github.com/cirruslabs/imagecache/internal/command/opencache"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"
)

var filter string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List fingerprints of the cached images",
		Example: `  imagecache list --filter 'value.score > 0.9'`,
		Args:    cobra.NoArgs,
		RunE:    run,
	}

	cmd.Flags().StringVar(&filter, "filter", "",
		"boolean expression evaluated against \"fingerprint\" and \"value\" of each entry")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	var program *vm.Program

	if filter != "" {
		var err error

		program, err = expr.Compile(filter, expr.Env(map[string]any{
			"fingerprint": "",
			"value":       nil,
		}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("failed to compile filter expression %q: %w", filter, err)
		}
	}

	cache, err := opencache.Open()
	if err != nil {
		return err
	}

	for fp, err := range cache.Keys(cmd.Context()) {
		if err != nil {
			return err
		}

		if program != nil {
			value, err := cache.Get(cmd.Context(), imagecache.Fingerprinted(fp))
			if err != nil {
				return err
			}

			matches, err := expr.Run(program, map[string]any{
				"fingerprint": fp.String(),
				"value":       value,
			})
			if err != nil {
				return fmt.Errorf("failed to evaluate filter expression for %s: %w", fp, err)
			}

			if !matches.(bool) {
				continue
			}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), fp)
	}

	return nil
}
