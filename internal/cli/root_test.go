package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestGlobalFlagsRegistered(t *testing.T) {
	want := map[string]struct{}{
		"vault-path": {},
		"config":     {},
		"json":       {},
	}

	got := make(map[string]struct{})
	rootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		got[flag.Name] = struct{}{}
	})

	for name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("global flag --%s not registered", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"scan", "mentions", "show", "update",
		"watch", "lsp", "mv", "config", "version",
	}

	registered := make(map[string]struct{})
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = struct{}{}
	}

	for _, name := range want {
		if _, ok := registered[name]; !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}
