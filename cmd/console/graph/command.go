// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph implements the creative console's "graph" commands:
// listing, uploading, and activating behaviour graph versions.
package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/control"
	"github.com/sentient-engine/consoles/lib/graphdoc"
)

// Command returns the "graph" command group.
func Command(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "graph",
		Summary: "List, upload, and activate behaviour graphs",
		Description: `Manage the room's behaviour graph versions.

Uploading stores a new version; activating marks a version as the one
the room core should run. The room core loads the active version on its
next restart, so activation never changes a running show.`,
		Subcommands: []*cli.Command{
			listCommand(runtime),
			activeCommand(runtime),
			uploadCommand(runtime),
			activateCommand(runtime),
			templateCommand(runtime),
		},
	}
}

type listParams struct {
	cli.JSONOutput
}

func listCommand(runtime *cli.Runtime) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List graph versions and the active version",
		Usage:   fmt.Sprintf("%s graph list [flags]", runtime.Program),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			catalog, err := environment.Control().RefreshGraphs(ctx)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(environment.Stdout, catalog); done {
				return err
			}
			return printCatalog(environment.Stdout, catalog)
		},
	}
}

func activeCommand(runtime *cli.Runtime) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "active",
		Summary: "Show the active graph version",
		Usage:   fmt.Sprintf("%s graph active [flags]", runtime.Program),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			active, err := environment.Control().GetActiveGraph(ctx)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(environment.Stdout, active); done {
				return err
			}
			if active == nil {
				environment.Printf("No graph has been activated in room %s.\n", environment.Settings.RoomID)
				return nil
			}
			environment.Printf("Version %d, activated %s.\n", active.ActiveVersion, active.ActivatedAt().Local().Format(cli.TimeLayout))
			return nil
		},
	}
}

type uploadOutput struct {
	Version int64                `json:"version"`
	Catalog control.GraphCatalog `json:"catalog"`
}

func uploadCommand(runtime *cli.Runtime) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a graph document as a new version",
		Description: `Upload a graph document as a new version. The document is read from
the file, or from stdin when the argument is "-". Comments and trailing
commas are allowed and are removed before upload; anything that is not
a JSON object is rejected before contacting the room.

Uploading does not activate the new version.`,
		Usage: fmt.Sprintf("%s graph upload <file|-> [flags]", runtime.Program),
		Examples: []cli.Example{
			{
				Description: "Start from the template, edit, then upload",
				Command:     fmt.Sprintf("%[1]s graph template > lobby.jsonc && %[1]s graph upload lobby.jsonc", runtime.Program),
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("upload takes exactly one argument: the graph file, or - for stdin")
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			document, err := graphdoc.Load(args[0], environment.Stdin)
			if err != nil {
				if graphdoc.IsParseError(err) {
					return err
				}
				return cli.Validation("%w", err)
			}

			upload, err := environment.Control().UploadGraph(ctx, document)
			if err != nil && !control.IsRefreshError(err) {
				return err
			}
			if done, jsonErr := params.EmitJSON(environment.Stdout, uploadOutput{Version: upload.Version, Catalog: upload.Catalog}); done {
				if err != nil {
					return err
				}
				return jsonErr
			}
			environment.Printf("Uploaded graph version %d. Activate it with '%s graph activate %d'.\n",
				upload.Version, environment.Program, upload.Version)
			if err != nil {
				return err
			}
			environment.Printf("\n")
			return printCatalog(environment.Stdout, upload.Catalog)
		},
	}
}

func activateCommand(runtime *cli.Runtime) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "activate",
		Summary: "Mark a graph version as active",
		Description: `Mark a graph version as the room's active version. The room core
loads it on restart; a show in progress keeps running its current
graph.`,
		Usage:  fmt.Sprintf("%s graph activate <version> [flags]", runtime.Program),
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("activate takes exactly one argument: the version")
			}
			version, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || version < 1 {
				return cli.Validation("invalid graph version %q: must be a positive integer", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}

			catalog, err := environment.Control().ActivateGraph(ctx, version)
			if err != nil && !control.IsRefreshError(err) {
				return err
			}
			if done, jsonErr := params.EmitJSON(environment.Stdout, catalog); done {
				if err != nil {
					return err
				}
				return jsonErr
			}
			environment.Printf("Version %d is now the active graph for room %s; the room core loads it on restart.\n",
				version, environment.Settings.RoomID)
			if err != nil {
				return err
			}
			environment.Printf("\n")
			return printCatalog(environment.Stdout, catalog)
		},
	}
}

func templateCommand(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "template",
		Summary: "Print a starter graph document for the configured room",
		Usage:   fmt.Sprintf("%s graph template", runtime.Program),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			environment.Printf("%s\n", graphdoc.Template(environment.Settings.RoomID))
			return nil
		},
	}
}

func printCatalog(w io.Writer, catalog control.GraphCatalog) error {
	if len(catalog.Versions) == 0 {
		_, err := fmt.Fprintln(w, "No graph versions uploaded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tCREATED\tACTIVE")
	for _, record := range catalog.Versions {
		marker := ""
		if catalog.IsActive(record.Version) {
			marker = "*"
		}
		created := "-"
		if record.CreatedAtUnixMS != 0 {
			created = record.CreatedAt().Local().Format(cli.TimeLayout)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", record.Version, created, marker)
	}
	return tw.Flush()
}
