package commands

import (
	"context"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitsig/pkg/config"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

const (
	defaultLogLimit = 10
	shortHashLen    = 10
)

// logRow is one commit of the log with both signatures decoded.
type logRow struct {
	hash      string
	encoding  string
	author    signature.Entry
	committer signature.Entry
}

func newLogCommand(app *App) *cobra.Command {
	var (
		limit        int
		encodingName string
	)

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "List the signatures of recent commits",
		Long: `Log walks the history from a revision (HEAD by default), newest first,
and prints the author and committer of each commit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: app.run("log", func(ctx context.Context, cmd *cobra.Command, args []string) error {
			rev := defaultRevision
			if len(args) == 1 {
				rev = args[0]
			}

			b, err := app.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()

			commits, err := b.Log(ctx, rev, limit)
			if err != nil {
				return err
			}

			converter := app.converter(b.Factory())
			rows := make([]logRow, 0, len(commits))

			for _, commit := range commits {
				enc := app.showEncoding(encodingName, commit.Encoding)

				author, convErr := converter.FromSignature(ctx, commit.Author, enc)
				if convErr != nil {
					return convErr
				}

				committer, convErr := converter.FromSignature(ctx, commit.Committer, enc)
				if convErr != nil {
					return convErr
				}

				rows = append(rows, logRow{
					hash:      commit.Hash.String(),
					encoding:  enc,
					author:    author,
					committer: committer,
				})
			}

			if app.cfg.Output == config.OutputText {
				writeLogTable(cmd.OutOrStdout(), rows, time.Now())

				return nil
			}

			views := make([]showView, 0, len(rows))
			for _, row := range rows {
				views = append(views, showView{
					Hash:     row.hash,
					Encoding: row.encoding,
					Entries: []entryView{
						newEntryView(roleAuthor, row.author),
						newEntryView(roleCommitter, row.committer),
					},
				})
			}

			return writeStructured(cmd.OutOrStdout(), app.cfg.Output, views)
		}),
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", defaultLogLimit, "number of commits to list, 0 for all")
	cmd.Flags().StringVar(&encodingName, "encoding", "", "decode names and emails with this encoding")

	return cmd
}

func writeLogTable(w io.Writer, rows []logRow, now time.Time) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"Commit", "Author", "Authored", "Committer", "Committed"})

	for _, row := range rows {
		tbl.AppendRow(table.Row{
			row.hash[:shortHashLen],
			row.author.Name + " <" + row.author.Email + ">",
			humanize.RelTime(row.author.Time, now, "ago", "from now"),
			row.committer.Name + " <" + row.committer.Email + ">",
			humanize.RelTime(row.committer.Time, now, "ago", "from now"),
		})
	}

	tbl.Render()
}
