package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toudaivocadou/vocadou/internal/build"
	"github.com/toudaivocadou/vocadou/internal/content"
	"github.com/toudaivocadou/vocadou/internal/names"
)

var listFormats = []string{"table", "json", "yaml"}

func newListCmd(v *viper.Viper) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:       "list members|works|posts|albums",
		Aliases:   []string{"l", "ls"},
		Short:     "List the records in the content tree",
		ValidArgs: []string{"members", "works", "posts", "albums"},
		Long: `List one collection of the content tree in site order: members by role and
name, works and posts newest first, albums by release date.

The content tree is fully checked first, so author names are display names.

Examples:
  vocadou list members
  vocadou list works -f json          # Output as JSON (short flag)
  vocadou list albums --format yaml`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ValidateFormat(format, listFormats); err != nil {
				return err
			}

			cfg, logger, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			graph, err := newBuilder(cfg, logger, false).Check(cmd.Context())
			if err != nil {
				return err
			}

			rows := listRows(args[0], graph)
			return writeRows(cmd.OutOrStdout(), strings.ToLower(format), rows)
		},
	}

	addFormatFlag(cmd, &format, listFormats)
	return cmd
}

// row is one listed record. Columns gives the table cells in header order.
type row interface {
	Columns() []string
}

type memberRow struct {
	Handle    string `json:"handle" yaml:"handle"`
	Name      string `json:"name" yaml:"name"`
	Position  string `json:"position,omitempty" yaml:"position,omitempty"`
	EntryYear int    `json:"entry_year,omitempty" yaml:"entry_year,omitempty"`
	File      string `json:"file" yaml:"file"`
}

func (r memberRow) Columns() []string {
	year := ""
	if r.EntryYear > 0 {
		year = strconv.Itoa(r.EntryYear)
	}
	return []string{r.Handle, r.Name, r.Position, year, r.File}
}

type workRow struct {
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Date   string `json:"date" yaml:"date"`
	Remix  bool   `json:"remix" yaml:"remix"`
	File   string `json:"file" yaml:"file"`
}

func (r workRow) Columns() []string {
	return []string{r.Title, r.Author, r.Date, yesNo(r.Remix), r.File}
}

type postRow struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Date     string `json:"date" yaml:"date"`
	Official bool   `json:"official" yaml:"official"`
	File     string `json:"file" yaml:"file"`
}

func (r postRow) Columns() []string {
	return []string{r.Title, r.Author, r.Date, yesNo(r.Official), r.File}
}

type albumRow struct {
	Title       string `json:"title" yaml:"title"`
	Type        string `json:"album_type" yaml:"album_type"`
	ReleaseDate string `json:"release_date" yaml:"release_date"`
	Tracks      int    `json:"tracks" yaml:"tracks"`
	File        string `json:"file" yaml:"file"`
}

func (r albumRow) Columns() []string {
	return []string{r.Title, r.Type, r.ReleaseDate, strconv.Itoa(r.Tracks), r.File}
}

var listHeaders = map[string][]string{
	"members": {"HANDLE", "NAME", "POSITION", "ENTRY", "FILE"},
	"works":   {"TITLE", "AUTHOR", "DATE", "REMIX", "FILE"},
	"posts":   {"TITLE", "AUTHOR", "DATE", "OFFICIAL", "FILE"},
	"albums":  {"TITLE", "TYPE", "RELEASED", "TRACKS", "FILE"},
}

type listing struct {
	headers []string
	rows    []row
}

func listRows(kind string, graph *build.Graph) listing {
	idx := graph.Index
	l := listing{headers: listHeaders[kind], rows: []row{}}

	switch kind {
	case "members":
		for _, m := range idx.Members {
			l.rows = append(l.rows, memberRow{
				Handle:    m.Handle.String(),
				Name:      m.Name,
				Position:  m.Position,
				EntryYear: m.EntryYear,
				File:      m.Path,
			})
		}
	case "works":
		for _, w := range idx.Works {
			l.rows = append(l.rows, workRow{
				Title:  w.Title,
				Author: displayName(graph.Names, w.Author),
				Date:   w.Date.String(),
				Remix:  w.IsRemix(),
				File:   w.Path,
			})
		}
	case "posts":
		for _, p := range idx.Posts {
			l.rows = append(l.rows, postRow{
				Title:    p.Title,
				Author:   displayName(graph.Names, p.Author),
				Date:     p.Date.String(),
				Official: p.Official,
				File:     p.Path,
			})
		}
	case "albums":
		for _, a := range idx.Albums {
			l.rows = append(l.rows, albumRow{
				Title:       a.Title,
				Type:        string(a.AlbumType),
				ReleaseDate: a.ReleaseDate.String(),
				Tracks:      len(a.Tracklist),
				File:        a.Path,
			})
		}
	}
	return l
}

func displayName(table *names.Table, h content.Handle) string {
	if name, ok := table.Lookup(h); ok {
		return name
	}
	return h.String()
}

func writeRows(w io.Writer, format string, l listing) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(l.rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(l.rows)
	default:
		if len(l.rows) == 0 {
			_, err := fmt.Fprintln(w, "No records found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(l.headers, "\t"))
		for _, r := range l.rows {
			fmt.Fprintln(tw, strings.Join(r.Columns(), "\t"))
		}
		return tw.Flush()
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
