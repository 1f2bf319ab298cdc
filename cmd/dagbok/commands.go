package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MarcoPoloResearchLab/dagbok/internal/journal"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// clipboardWriteAll is swapped in tests.
var clipboardWriteAll = clipboard.WriteAll

func newTodayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's entry",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			view := rt.journal.Today(ctx)
			fmt.Fprintln(out, journal.FormatLongDate(view.Current))
			printEntryLine(out, view.Date.String(), view.Entry)
			if view.Found {
				fmt.Fprintf(out, "Laddade sparad dag (%s).\n", view.Date)
			} else {
				fmt.Fprintln(out, "Ny dag. Skriv eller slumpa en tanke och spara.")
			}
			return nil
		}),
	}
}

func newSaveCommand() *cobra.Command {
	var (
		mood    float64
		thought string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save today's mood and thought",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			key, entry, err := rt.journal.SaveToday(ctx, mood, thought)
			if err != nil {
				return err
			}
			printEntryLine(out, key.String(), entry)
			fmt.Fprintf(out, "Sparade %s.\n", key)
			return nil
		}),
	}
	cmd.Flags().Float64Var(&mood, "mood", 50, "Mood score (0-100)")
	cmd.Flags().StringVar(&thought, "thought", "", "Thought for the day (blank picks a random prompt)")
	return cmd
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete today's entry",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			key, removed, err := rt.journal.ClearToday(ctx)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(out, "Rensade %s.\n", key)
			} else {
				fmt.Fprintln(out, "Inget att rensa idag.")
			}
			return nil
		}),
	}
}

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent days, newest first",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			if limit <= 0 {
				limit = rt.config.HistoryLimit
			}
			items := rt.journal.History(ctx, limit)
			if len(items) == 0 {
				fmt.Fprintln(out, "Inga sparade dagar ännu.")
				return nil
			}
			for _, item := range items {
				dateText, err := journal.FormatShortDate(item.Date, rt.journal.Location())
				if err != nil {
					dateText = item.Date.String()
				}
				printEntryLine(out, dateText, item.Entry)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of days to show (default: history.limit)")
	return cmd
}

func newThoughtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "thought",
		Short: "Print a random prompt thought",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			fmt.Fprintln(out, rt.journal.RandomThought())
			return nil
		}),
	}
}

func newExportCommand() *cobra.Command {
	var (
		output          string
		copyToClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal as JSON",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			payload, err := rt.journal.Export(ctx)
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, append(payload, '\n'), 0o600); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, string(payload))
			}
			fmt.Fprintln(os.Stderr, exportStatus(payload, copyToClipboard))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the export to a file instead of stdout")
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Also copy the export to the system clipboard")
	return cmd
}

func exportStatus(payload []byte, copyToClipboard bool) string {
	if copyToClipboard && clipboardWriteAll(string(payload)) == nil {
		return "Export klar (JSON kopierades till urklipp)."
	}
	return "Export klar."
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an exported JSON file into the journal",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *app, out io.Writer, args []string) error {
			raw, err := os.ReadFile(strings.TrimSpace(args[0]))
			if err != nil {
				fmt.Fprintln(out, "Import misslyckades. Filen kunde inte läsas.")
				return err
			}
			return runImport(ctx, rt.journal, raw, out)
		}),
	}
}

func runImport(ctx context.Context, store *journal.Store, raw []byte, out io.Writer) error {
	result, err := store.Import(ctx, raw)
	if journal.IsFormatError(err) {
		fmt.Fprintln(out, "Import misslyckades. Filen verkar inte vara rätt JSON-format.")
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Import klar (merge). %d dagar importerade, %d totalt.\n", result.Imported, result.Total)
	return nil
}
