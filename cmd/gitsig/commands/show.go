package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitsig/pkg/config"
	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

const (
	defaultRevision = "HEAD"
	roleAuthor      = "author"
	roleCommitter   = "committer"
)

func newShowCommand(app *App) *cobra.Command {
	var encodingName string

	cmd := &cobra.Command{
		Use:   "show [revision]",
		Short: "Print the author and committer of a commit",
		Long: `Show reads the author and committer signatures of a commit (HEAD by
default) back into records.

Names and emails are decoded with --encoding when given, otherwise with the
encoding header of the commit. Commits without an encoding header use the
configured encoding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.run("show", func(ctx context.Context, cmd *cobra.Command, args []string) error {
			rev := defaultRevision
			if len(args) == 1 {
				rev = args[0]
			}

			b, err := app.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			commit, err := b.Signatures(ctx, rev)
			if err != nil {
				return err
			}

			enc := app.showEncoding(encodingName, commit.Encoding)
			converter := app.converter(b.Factory())
			roles := []string{roleAuthor, roleCommitter}
			entries := make([]signature.Entry, 0, len(roles))

			for _, sig := range []gitlib.Signature{commit.Author, commit.Committer} {
				entry, convErr := converter.FromSignature(ctx, sig, enc)
				if convErr != nil {
					return convErr
				}

				entries = append(entries, entry)
			}

			if app.cfg.Output == config.OutputText {
				writeEntryTable(cmd.OutOrStdout(), commit.Hash, enc, roles, entries, time.Now())

				return nil
			}

			view := showView{Hash: commit.Hash.String(), Encoding: enc}
			for idx, entry := range entries {
				view.Entries = append(view.Entries, newEntryView(roles[idx], entry))
			}

			return writeStructured(cmd.OutOrStdout(), app.cfg.Output, view)
		}),
	}

	cmd.Flags().StringVar(&encodingName, "encoding", "", "decode names and emails with this encoding")

	return cmd
}

// showEncoding picks the encoding for a commit: the flag, then a non-default
// commit header, then the configured encoding.
func (a *App) showEncoding(flagValue, commitEncoding string) string {
	switch {
	case flagValue != "":
		return flagValue
	case commitEncoding != "" && commitEncoding != gitlib.DefaultEncoding:
		return commitEncoding
	default:
		return a.cfg.Encoding
	}
}
