package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectWidgetLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"deskboard"},
			want: []string{"deskboard"},
		},
		{
			name: "direct widget id first token",
			in:   []string{"deskboard", "widget-abc123"},
			want: []string{"deskboard", "widgets", "show", "widget-abc123"},
		},
		{
			name: "direct widget id after value flag",
			in:   []string{"deskboard", "--store", "file:///tmp/board", "widget-abc123"},
			want: []string{"deskboard", "--store", "file:///tmp/board", "widgets", "show", "widget-abc123"},
		},
		{
			name: "direct widget id after equals flag",
			in:   []string{"deskboard", "--format=yaml", "widget-abc123"},
			want: []string{"deskboard", "--format=yaml", "widgets", "show", "widget-abc123"},
		},
		{
			name: "direct widget id after bool flag",
			in:   []string{"deskboard", "--pretty", "widget-abc123"},
			want: []string{"deskboard", "--pretty", "widgets", "show", "widget-abc123"},
		},
		{
			name: "direct widget id after double dash",
			in:   []string{"deskboard", "--log-level", "debug", "--", "widget-abc123"},
			want: []string{"deskboard", "--log-level", "debug", "widgets", "show", "--", "widget-abc123"},
		},
		{
			name: "bare prefix is not an id",
			in:   []string{"deskboard", "widget-"},
			want: []string{"deskboard", "widget-"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"deskboard", "widgets", "show", "widget-abc123"},
			want: []string{"deskboard", "widgets", "show", "widget-abc123"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"deskboard", "wat"},
			want: []string{"deskboard", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectWidgetLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectWidgetLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
