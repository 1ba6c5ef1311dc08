package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitsig/pkg/config"
)

// ErrNoMessage is returned when commit is run without -m.
var ErrNoMessage = errors.New("commit message is required (use -m)")

func newCommitCommand(app *App) *cobra.Command {
	var (
		message       string
		authorFile    string
		committerFile string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Create a commit with signatures resolved from records",
		Long: `Commit stages the whole working tree and commits it on HEAD.

The author and committer are read from record files. Without --author-file
or --committer-file the repository default identity is used for that role.`,
		Args: cobra.NoArgs,
		RunE: app.run("commit", func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if message == "" {
				return ErrNoMessage
			}

			author, err := optionalRecord(authorFile)
			if err != nil {
				return err
			}

			committer, err := optionalRecord(committerFile)
			if err != nil {
				return err
			}

			b, err := app.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			converter := app.converter(b.Factory())

			authorSig, err := converter.ToSignature(ctx, author, b)
			if err != nil {
				return fmt.Errorf("author: %w", err)
			}

			committerSig, err := converter.ToSignature(ctx, committer, b)
			if err != nil {
				return fmt.Errorf("committer: %w", err)
			}

			hash, err := b.CreateCommit(ctx, message, authorSig, committerSig)
			if err != nil {
				return err
			}

			app.providers.Logger.DebugContext(ctx, "commit created", slog.String("hash", hash.String()))

			if app.cfg.Output == config.OutputText {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hash.String())

				return err
			}

			return writeStructured(cmd.OutOrStdout(), app.cfg.Output, commitView{
				Hash:      hash.String(),
				Author:    newSignatureView(authorSig),
				Committer: newSignatureView(committerSig),
			})
		}),
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&authorFile, "author-file", "", "YAML or JSON file holding the author record")
	cmd.Flags().StringVar(&committerFile, "committer-file", "", "YAML or JSON file holding the committer record")

	return cmd
}

func optionalRecord(path string) (any, error) {
	if path == "" {
		return nil, nil //nolint:nilnil // nil selects the default identity.
	}

	record, err := readRecordFile(path)
	if err != nil {
		return nil, err
	}

	return record, nil
}
