package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rackfish/rackfish/debugctx"
)

const (
	debugGroupAll       = debugctx.GroupAll
	debugGroupNetwork   = debugctx.GroupNetwork
	debugGroupGraph     = debugctx.GroupGraph
	debugGroupInventory = debugctx.GroupInventory
)

type debugSettings struct {
	enabled bool
	groups  []string
}

var currentDebug debugSettings

func configureDebugSettings(cmd *cobra.Command) error {
	debugValue, err := lookupStringFlag(cmd, "debug")
	if err != nil {
		return err
	}

	settings, err := parseDebugSettings(debugValue)
	if err != nil {
		return usageError(cmd, err.Error())
	}
	currentDebug = settings
	return nil
}

func parseDebugSettings(raw string) (debugSettings, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return debugSettings{}, nil
	}

	seen := map[string]bool{}
	var groups []string
	for _, entry := range splitDebugGroups(raw) {
		name := strings.ToLower(strings.TrimSpace(entry))
		if name == "" {
			continue
		}
		if name == debugGroupAll {
			return debugSettings{enabled: true, groups: []string{debugGroupAll}}, nil
		}
		if !isKnownDebugGroup(name) {
			return debugSettings{}, fmt.Errorf("unknown debug group %q (available: %s)", name, strings.Join(knownDebugGroups(), ", "))
		}
		if !seen[name] {
			seen[name] = true
			groups = append(groups, name)
		}
	}
	if len(groups) == 0 {
		return debugSettings{}, nil
	}
	return debugSettings{enabled: true, groups: groups}, nil
}

func splitDebugGroups(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
}

func knownDebugGroups() []string {
	return []string{
		debugGroupAll,
		debugGroupNetwork,
		debugGroupGraph,
		debugGroupInventory,
	}
}

func isKnownDebugGroup(group string) bool {
	for _, name := range knownDebugGroups() {
		if name == group {
			return true
		}
	}
	return false
}

// commandContext attaches the parsed debug settings so library code can
// emit grouped diagnostics to stderr.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !currentDebug.enabled {
		return ctx
	}
	ctx = debugctx.WithGroups(ctx, currentDebug.groups...)
	return debugctx.WithWriter(ctx, cmd.ErrOrStderr())
}

func lookupStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil {
		return "", nil
	}
	for _, flags := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		if flags.Lookup(name) != nil {
			return flags.GetString(name)
		}
	}
	return "", nil
}
