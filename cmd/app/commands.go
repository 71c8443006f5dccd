package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/starford/memo/internal"
	"github.com/starford/memo/internal/markdown"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/notestore"
	"github.com/starford/memo/internal/summarize"
)

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// withServices loads the config, opens the store and runs fn. Logs go to
// stderr so command output stays clean.
func withServices(fn func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, err := internal.Build(
			internal.WithConfig(cfg),
			internal.WithVersion(version),
			internal.WithLogOutput(os.Stderr),
		)
		if err != nil {
			return err
		}
		defer svc.Close()
		return fn(ctx, cmd, svc)
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a memo",
		ArgsUsage: "[CONTENT...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Memo title"},
		},
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			content := strings.Join(cmd.Args().Slice(), " ")
			note, added, err := svc.Store.Add(ctx, cmd.String("title"), content)
			if err != nil {
				return err
			}
			if !added {
				return errors.New("title and content are empty")
			}
			fmt.Fprintln(stdout, note.ID)
			return nil
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List memos, favorites first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Filter by title or content"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
		},
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			f := notestore.Filter{Query: cmd.String("query"), Scope: notestore.ScopeAll}
			if cmd.Bool("favorites") {
				f.Scope = notestore.ScopeFavorites
			}
			notes, err := svc.Store.View(ctx, f)
			if err != nil {
				return err
			}
			printNotes(stdout, notes)
			return nil
		}),
	}
}

func printNotes(w io.Writer, notes []models.Note) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, n := range notes {
		star := " "
		if n.Favorite {
			star = "★"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", star, n.ID, n.Title, humanize.Time(n.UpdatedAt))
	}
	_ = tw.Flush()
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a memo",
		ArgsUsage: "ID",
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("memo id is required")
			}
			removed, err := svc.Store.Remove(ctx, id)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(stdout, "%s: not found\n", id)
			}
			return nil
		}),
	}
}

func favoriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "fav",
		Usage:     "Toggle the favorite flag of a memo",
		ArgsUsage: "ID",
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			id := cmd.Args().First()
			if id == "" {
				return errors.New("memo id is required")
			}
			note, found, err := svc.Store.ToggleFavorite(ctx, id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: not found", id)
			}
			fmt.Fprintf(stdout, "%s favorite=%t\n", note.ID, note.Favorite)
			return nil
		}),
	}
}

func summarizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Summarize text, or every memo with --all",
		ArgsUsage: "[TEXT...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Summarize every memo"},
		},
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			var (
				res summarize.Result
				err error
			)
			if cmd.Bool("all") {
				res, err = svc.Summaries.SummarizeAll(ctx)
			} else {
				text := strings.Join(cmd.Args().Slice(), " ")
				if text == "" || text == "-" {
					data, rerr := io.ReadAll(stdin)
					if rerr != nil {
						return rerr
					}
					text = string(data)
				}
				res, err = svc.Summaries.Summarize(ctx, text)
			}
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s: %s", res.Error, res.Message())
			}
			fmt.Fprintln(stdout, res.Summary)
			return nil
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every memo as a Markdown file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Output directory", Value: "export"},
		},
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			notes, err := svc.Store.Notes(ctx)
			if err != nil {
				return err
			}
			dir := cmd.String("dir")
			n, err := markdown.Export(afero.NewOsFs(), dir, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "exported %d memos (%s) to %s\n", len(notes), humanize.Bytes(uint64(n)), dir)
			return nil
		}),
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Add memos from Markdown files",
		ArgsUsage: "FILE...",
		Action: withServices(func(ctx context.Context, cmd *cli.Command, svc *internal.Services) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("at least one file is required")
			}
			count, err := importFiles(ctx, svc.Store, afero.NewOsFs(), paths)
			fmt.Fprintf(stdout, "imported %s memos\n", humanize.Comma(int64(count)))
			return err
		}),
	}
}

// importFiles adds one memo per file. Imported memos get new ids; the
// favorite flag is carried over.
func importFiles(ctx context.Context, store *notestore.Store, fs afero.Fs, paths []string) (int, error) {
	count := 0
	for _, path := range paths {
		doc, err := markdown.ReadFile(fs, path)
		if err != nil {
			return count, err
		}
		note, added, err := store.Add(ctx, doc.Title, doc.Content)
		if err != nil {
			return count, fmt.Errorf("import %s: %w", path, err)
		}
		if !added {
			continue
		}
		if doc.Favorite {
			if _, _, err := store.ToggleFavorite(ctx, note.ID); err != nil {
				return count, fmt.Errorf("import %s: %w", path, err)
			}
		}
		count++
	}
	return count, nil
}
