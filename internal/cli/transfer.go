package cli

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/settings"
	"deskboard-cli/internal/widgetdata"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const snapshotVersion = 1

// snapshot is the export/import document: the aggregate plus every widget's list data.
type snapshot struct {
	Version  int                     `json:"version"`
	Settings model.Settings          `json:"settings"`
	Notes    map[string][]string     `json:"notes,omitempty"`
	Todos    map[string][]model.Task `json:"todos,omitempty"`
}

//go:embed schema/snapshot.schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaURL = "https://deskboard.local/schema/snapshot.json"

var snapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(snapshotSchemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(snapshotSchemaURL)
})

// validateSnapshot checks raw against the export schema.
func validateSnapshot(raw []byte) error {
	sch, err := snapshotSchema()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	return nil
}

func collectSnapshot(s *session) snapshot {
	snap := s.board.Snapshot()
	out := snapshot{
		Version:  snapshotVersion,
		Settings: snap,
		Notes:    map[string][]string{},
		Todos:    map[string][]model.Task{},
	}
	for _, w := range snap.Widgets {
		switch w.Type {
		case registry.KindNotes:
			out.Notes[w.ID] = widgetdata.Notes(s.store(), w.ID).Items(s.ctx)
		case registry.KindTodo:
			out.Todos[w.ID] = widgetdata.Tasks(s.store(), w.ID).Items(s.ctx)
		}
	}
	return out
}

func newExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard and widget data as one JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, func(s *session) (any, error) {
				doc := collectSnapshot(s)
				if outPath == "" {
					return doc, nil
				}
				b, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return nil, err
				}
				if err := os.WriteFile(outPath, append(b, '\n'), 0o644); err != nil {
					return nil, err
				}
				return map[string]any{"data": map[string]any{"path": outPath, "widgets": len(doc.Settings.Widgets)}}, nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the dashboard with an exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := validateSnapshot(raw); err != nil {
				return writeErr(cmd, err)
			}

			doc := snapshot{Settings: settings.Default()}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return writeErr(cmd, fmt.Errorf("decode snapshot: %w", err))
			}
			if dups := settings.DuplicateWidgetIDs(doc.Settings.Widgets); len(dups) > 0 {
				return writeErr(cmd, fmt.Errorf("invalid snapshot: duplicate widget id(s): %s", strings.Join(dups, ", ")))
			}
			doc.Settings = settings.Normalize(doc.Settings)
			if dryRun {
				return writeOut(cmd, app, map[string]any{"data": doc, "meta": map[string]any{"dryRun": true}})
			}

			return run(cmd, app, func(s *session) (any, error) {
				s.board.Replace(doc.Settings)
				for id, notes := range doc.Notes {
					if err := s.store().Save(widgetdata.NotesKey(id), notes); err != nil {
						return nil, err
					}
				}
				for id, tasks := range doc.Todos {
					if err := s.store().Save(widgetdata.TodoKey(id), tasks); err != nil {
						return nil, err
					}
				}
				s.env.log.Info("snapshot imported",
					zap.Int("widgets", len(doc.Settings.Widgets)),
					zap.Int("notes", len(doc.Notes)),
					zap.Int("todos", len(doc.Todos)),
				)
				return map[string]any{"data": map[string]any{
					"widgets": len(doc.Settings.Widgets),
					"notes":   len(doc.Notes),
					"todos":   len(doc.Todos),
				}}, nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print the document without writing")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
