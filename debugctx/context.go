package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	GroupAll       = "all"
	GroupNetwork   = "network"
	GroupGraph     = "graph"
	GroupInventory = "inventory"
)

type groupsKey struct{}
type writerKey struct{}

func WithGroups(ctx context.Context, groups ...string) context.Context {
	enabled := make(map[string]bool, len(groups))
	for _, group := range groups {
		group = strings.TrimSpace(strings.ToLower(group))
		if group != "" {
			enabled[group] = true
		}
	}
	if len(enabled) == 0 {
		return ctx
	}
	return context.WithValue(ctx, groupsKey{}, enabled)
}

func Enabled(ctx context.Context, group string) bool {
	if ctx == nil {
		return false
	}

	enabled, _ := ctx.Value(groupsKey{}).(map[string]bool)
	if len(enabled) == 0 {
		return false
	}
	return enabled[GroupAll] || enabled[group]
}

func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	if writer == nil {
		return ctx
	}

	return context.WithValue(ctx, writerKey{}, writer)
}

func Writer(ctx context.Context) io.Writer {
	if ctx == nil {
		return nil
	}

	writer, _ := ctx.Value(writerKey{}).(io.Writer)
	return writer
}

func Printf(ctx context.Context, group string, format string, args ...any) {
	if !Enabled(ctx, group) {
		return
	}

	writer := Writer(ctx)
	if writer == nil {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	_, _ = fmt.Fprintf(writer, "debug[%s]: %s\n", group, message)
}
