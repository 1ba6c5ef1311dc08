package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitsig/internal/backend"
	"github.com/Sumatoshi-tech/gitsig/pkg/config"
	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

func newResolveCommand(app *App) *cobra.Command {
	var (
		flags      recordFlags
		authorFile string
		header     string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Build a signature from a record or the default identity",
		Long: `Resolve builds a git signature.

Without --name/--email or --author-file the repository default identity
(user.name and user.email) is used. A record without --time is stamped with
the current time; --time-offset overrides the zone of --time in seconds.`,
		Args: cobra.NoArgs,
		RunE: app.run("resolve", func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			flags.offsetSet = cmd.Flags().Changed("time-offset")

			var (
				record any
				err    error
			)

			switch {
			case authorFile != "":
				record, err = readRecordFile(authorFile)
			case header != "":
				record, err = headerRecord(header)
			default:
				record, err = flags.record()
			}

			if err != nil {
				return err
			}

			sig, err := app.resolve(ctx, record)
			if err != nil {
				return err
			}

			if app.cfg.Output == config.OutputText {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), sig.String())

				return err
			}

			return writeStructured(cmd.OutOrStdout(), app.cfg.Output, newSignatureView(sig))
		}),
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "signature name")
	cmd.Flags().StringVar(&flags.email, "email", "", "signature email")
	cmd.Flags().StringVar(&flags.timeValue, "time", "", "signature time in RFC 3339 format")
	cmd.Flags().IntVar(&flags.timeOffset, "time-offset", 0, "offset from UTC in seconds, overriding the zone of --time")
	cmd.Flags().StringVar(&authorFile, "author-file", "", "YAML or JSON file holding the record")
	cmd.Flags().StringVar(&header, "header", "", `signature header line, e.g. "Jane Doe <jane@example.com> 1700000000 +0100"`)
	cmd.MarkFlagsMutuallyExclusive("author-file", "header", "name")
	cmd.MarkFlagsMutuallyExclusive("author-file", "header", "email")

	return cmd
}

// headerRecord parses a git signature header line into a record. A line
// without a timestamp yields a record stamped now.
func headerRecord(line string) (any, error) {
	sig, hasTime, err := gitlib.ParseSignature(line)
	if err != nil {
		return nil, err
	}

	fields := signature.Fields{
		signature.KeyName:  sig.Name,
		signature.KeyEmail: sig.Email,
	}

	if hasTime {
		fields[signature.KeyTime] = sig.When()
	}

	return fields, nil
}

// resolve converts record to a signature. A repository is only opened when
// record selects the default identity.
func (a *App) resolve(ctx context.Context, record any) (gitlib.Signature, error) {
	if record != nil {
		factory, err := backend.FactoryFor(a.cfg.Backend)
		if err != nil {
			return gitlib.Signature{}, err
		}

		return a.converter(factory).ToSignature(ctx, record, nil)
	}

	b, err := a.openBackend()
	if err != nil {
		return gitlib.Signature{}, err
	}
	defer b.Close()

	return a.converter(b.Factory()).ToSignature(ctx, nil, b)
}
