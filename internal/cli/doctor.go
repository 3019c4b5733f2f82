package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/settings"
	"deskboard-cli/internal/store"
	"deskboard-cli/internal/widgetdata"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var (
		fail  bool
		purge bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check stored dashboard data for unreadable values and orphaned widget data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report store.DoctorReport
			err := run(cmd, app, func(s *session) (any, error) {
				report = s.store().Doctor(s.ctx,
					store.KeyCheck{Prefix: settings.StorageKey, Decode: decodeAs[model.Settings]},
					store.KeyCheck{Prefix: widgetdata.NotesKey(""), Decode: decodeAs[[]string]},
					store.KeyCheck{Prefix: widgetdata.TodoKey(""), Decode: decodeAs[[]model.Task]},
				)

				snap := s.board.Snapshot()
				for _, w := range snap.Widgets {
					if !s.kinds.Has(w.Type) {
						report.Add(store.DoctorIssueLevelWarn, "unknown_widget_type", settings.StorageKey,
							"widget %s has type %q, which this version cannot render", w.ID, w.Type)
					}
				}

				orphans, err := widgetdata.Orphans(s.ctx, s.store(), snap)
				if err != nil {
					return nil, err
				}
				purged := 0
				for _, k := range orphans {
					if purge {
						if err := s.store().Delete(s.ctx, k); err != nil {
							return nil, err
						}
						purged++
						continue
					}
					report.Add(store.DoctorIssueLevelWarn, "orphaned_widget_data", k,
						"data for removed widget %s (delete with --purge-orphans)", orphanWidgetID(k))
				}

				return map[string]any{
					"data": report,
					"meta": map[string]any{
						"issues":    len(report.Issues),
						"hasErrors": report.HasErrors(),
						"purged":    purged,
					},
				}, nil
			})
			if err != nil {
				return err
			}
			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	cmd.Flags().BoolVar(&purge, "purge-orphans", false, "Delete notes/tasks left behind by removed widgets")
	return cmd
}

func decodeAs[T any](raw []byte) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unexpected shape: %w", err)
	}
	return nil
}

func orphanWidgetID(key string) string {
	for _, p := range []string{widgetdata.NotesKey(""), widgetdata.TodoKey("")} {
		if id, ok := strings.CutPrefix(key, p); ok {
			return id
		}
	}
	return key
}
