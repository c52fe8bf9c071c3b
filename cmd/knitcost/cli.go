package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/myintmo/knitcost/internal/config"
	"github.com/myintmo/knitcost/internal/db"
	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/ops"
	"github.com/myintmo/knitcost/internal/render"
	"github.com/myintmo/knitcost/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "knitcost",
		Usage:   "Per-piece FOB costing for knitwear",
		Version: Version,
		Commands: []*cli.Command{
			newCmd(database, cfg),
			resumeCmd(database, cfg),
			discardCmd(database),
			listCmd(database),
			showCmd(database),
			deleteCmd(database),
			duplicateCmd(database),
			computeCmd(database),
			exportCmd(database, baseDir),
			importCmd(database),
			printCmd(database),
			cardCmd(database),
			webCmd(database),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newCmd creates the new command: start a fresh wizard session.
func newCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Start a new costing wizard, overwriting any in-progress draft",
		Action: func(c *cli.Context) error {
			if err := runWizardNew(database, cfg, os.Stdin, os.Stdout); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// resumeCmd creates the resume command: continue the stored draft.
func resumeCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "resume",
		Usage: "Resume the in-progress costing wizard at its saved step",
		Action: func(c *cli.Context) error {
			if err := runWizardResume(database, cfg, os.Stdin, os.Stdout); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// discardCmd creates the discard command.
func discardCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "discard",
		Usage: "Discard the in-progress draft",
		Action: func(c *cli.Context) error {
			if err := db.NewDraftStore(database).ClearDraft(); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]bool{"discarded": true})
		},
	}
}

// listCmd creates the list command.
func listCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List costing records, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(database, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one costing record by id",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-photo", Usage: "Include the photo (base64) in the output"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(database, ops.GetInput{
				ID:           c.Args().First(),
				IncludePhoto: c.Bool("include-photo"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a costing record",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(database, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// duplicateCmd creates the duplicate command.
func duplicateCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "duplicate",
		Usage:     "Seed a fresh draft from a stored record (run 'resume' to edit it)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Duplicate(database, ops.DuplicateInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// computeCmd creates the compute command.
func computeCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "compute",
		Usage:     "Rerun the cost pipeline on a record and compare with its frozen snapshot",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Compute(database, ops.ComputeInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(database *sql.DB, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every record to a backup JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.knitcost/exports/knitcost-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(database, baseDir, ops.ExportInput{
				Path:       c.String("path"),
				AppVersion: Version,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Restore records from a backup file (validated wholesale, one transaction)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(database, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// printCmd creates the print command.
func printCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "Render a record as a printable HTML document",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Output file path (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(database, ops.GetInput{ID: c.Args().First(), IncludePhoto: true})
			if err != nil {
				return outputError(err)
			}
			doc, err := render.PrintDocument(&output.CostingRecord)
			if err != nil {
				return outputError(err)
			}
			if path := c.String("out"); path != "" {
				if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
					return outputError(errors.NewInternal(err))
				}
				return outputJSON(map[string]string{"path": path})
			}
			fmt.Fprintln(os.Stdout, doc)
			return nil
		},
	}
}

// cardCmd creates the card command.
func cardCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "card",
		Usage:     "Render a record as a shareable PNG card",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Output file path (default: <id>.png)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(database, ops.GetInput{ID: c.Args().First(), IncludePhoto: true})
			if err != nil {
				return outputError(err)
			}
			card, err := render.ShareCard(&output.CostingRecord)
			if err != nil {
				return outputError(err)
			}
			path := c.String("out")
			if path == "" {
				path = output.ID + ".png"
			}
			if err := os.WriteFile(path, card, 0644); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return outputJSON(map[string]string{"path": path})
		},
	}
}

// webCmd creates the web command.
func webCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only record browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(database, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if kErr, ok := err.(*errors.KnitError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", kErr.Code, kErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
