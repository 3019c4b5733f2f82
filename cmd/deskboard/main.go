package main

import (
	"os"
	"strings"

	"deskboard-cli/internal/cli"
)

func isWidgetID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "widget-") && len(s) > len("widget-")
}

// rewriteDirectWidgetLookupArgs turns `deskboard <widget-id>` into
// `deskboard widgets show <widget-id>`. Persistent flags may come first, so the first
// positional token is located rather than assuming argv[1].
func rewriteDirectWidgetLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so a widget id is never eaten.
	valueFlags := map[string]bool{
		"--store":     true,
		"--format":    true,
		"--log-level": true,
	}

	insert := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "widgets", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isWidgetID(argv[i+1]) {
				return insert(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isWidgetID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectWidgetLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
