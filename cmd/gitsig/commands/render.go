package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/gitsig/pkg/config"
	"github.com/Sumatoshi-tech/gitsig/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
)

const (
	jsonIndent = "  "
	yamlIndent = 2
)

// signatureView is the structured rendering of a signature.
type signatureView struct {
	Name   string `json:"name"   yaml:"name"`
	Email  string `json:"email"  yaml:"email"`
	Time   string `json:"time"   yaml:"time"`
	Unix   int64  `json:"unix"   yaml:"unix"`
	Offset int    `json:"offset" yaml:"offset"`
}

func newSignatureView(sig gitlib.Signature) signatureView {
	return signatureView{
		Name:   sig.Name,
		Email:  sig.Email,
		Time:   sig.When().Format(time.RFC3339),
		Unix:   sig.Time,
		Offset: sig.Offset,
	}
}

// entryView is the structured rendering of a signature read back from a commit.
type entryView struct {
	Role  string `json:"role"  yaml:"role"`
	Name  string `json:"name"  yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Time  string `json:"time"  yaml:"time"`
}

func newEntryView(role string, entry signature.Entry) entryView {
	return entryView{
		Role:  role,
		Name:  entry.Name,
		Email: entry.Email,
		Time:  entry.Time.Format(time.RFC3339),
	}
}

// commitView is the structured rendering of a created commit.
type commitView struct {
	Hash      string        `json:"hash"      yaml:"hash"`
	Author    signatureView `json:"author"    yaml:"author"`
	Committer signatureView `json:"committer" yaml:"committer"`
}

// showView is the structured rendering of the show command.
type showView struct {
	Hash     string      `json:"hash"     yaml:"hash"`
	Encoding string      `json:"encoding" yaml:"encoding"`
	Entries  []entryView `json:"entries"  yaml:"entries"`
}

// writeStructured encodes v as YAML or JSON.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", jsonIndent)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidOutput, format)
	}
}

// writeEntryTable prints the entries of a commit as a table.
func writeEntryTable(w io.Writer, hash gitlib.Hash, encoding string, roles []string, entries []signature.Entry, now time.Time) {
	title := color.New(color.FgYellow, color.Bold)
	title.Fprintf(w, "commit %s", hash)

	if encoding != gitlib.DefaultEncoding {
		fmt.Fprintf(w, " (%s)", encoding)
	}

	fmt.Fprintln(w)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"Role", "Name", "Email", "Date", "Age"})

	for idx, entry := range entries {
		tbl.AppendRow(table.Row{
			roles[idx],
			entry.Name,
			entry.Email,
			entry.Time.Format(time.RFC3339),
			humanize.RelTime(entry.Time, now, "ago", "from now"),
		})
	}

	tbl.Render()
}
