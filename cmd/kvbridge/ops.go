package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"github.com/kbukum/kvbridge/bridge"
	"github.com/kbukum/kvbridge/resolve"
)

// jsonOrText decodes s when it is JSON text and returns it unchanged
// otherwise, so `insert k 42` stores a number and `insert k hello` a string.
func jsonOrText(s string) any {
	if fastjson.Validate(s) != nil {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func newQueryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query [key]",
		Short: "Print the JSON value stored under key (null when missing)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.baseOptions()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				opts[bridge.FieldKey] = args[0]
			}
			return g.runOperation(cmd, opts, func(ctx context.Context, b *bridge.Bridge, res resolve.Resolver, opts bridge.Options, out io.Writer) error {
				value, err := b.Query(ctx, res, opts)
				if err != nil {
					return err
				}
				return writeJSON(out, value)
			})
		},
	}
}

func newPingCmd(g *globalFlags) *cobra.Command {
	var timeout string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that Redis answers within the timeout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := g.baseOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				opts[bridge.FieldTimeout] = timeout
			}
			return g.runOperation(cmd, opts, func(ctx context.Context, b *bridge.Bridge, res resolve.Resolver, opts bridge.Options, out io.Writer) error {
				reply, err := b.Ping(ctx, res, opts)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, reply)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&timeout, "timeout", "", "timeout in milliseconds or as a duration such as 2s (default 5000)")
	return cmd
}

func newInsertCmd(g *globalFlags) *cobra.Command {
	var ttl string

	cmd := &cobra.Command{
		Use:   "insert [key] [data]",
		Short: "Store data as JSON under key",
		Long: `Store data as JSON under key. data is parsed as JSON when it is valid
JSON text and stored as a string otherwise.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.baseOptions()
			if err != nil {
				return err
			}
			if len(args) >= 1 {
				opts[bridge.FieldKey] = args[0]
			}
			if len(args) == 2 {
				opts[bridge.FieldData] = jsonOrText(args[1])
			}
			if cmd.Flags().Changed("ttl") {
				opts[bridge.FieldTTL] = ttl
			}
			return g.runOperation(cmd, opts, func(ctx context.Context, b *bridge.Bridge, res resolve.Resolver, opts bridge.Options, _ io.Writer) error {
				return b.Insert(ctx, res, opts)
			})
		},
	}
	cmd.Flags().StringVar(&ttl, "ttl", "", "expiry in seconds or as a duration such as 10m (default none)")
	return cmd
}

// logFlag binds a log-insert flag to its option field.
type logFlag struct {
	name, field, usage string
	value              string
}

func newLogInsertCmd(g *globalFlags) *cobra.Command {
	flags := []*logFlag{
		{name: "timestamp", field: bridge.FieldTimestamp, usage: "record timestamp"},
		{name: "level", field: bridge.FieldLogLevel, usage: "log level"},
		{name: "event", field: bridge.FieldEvent, usage: "event name"},
		{name: "id", field: bridge.FieldID, usage: "event id"},
		{name: "type", field: bridge.FieldType, usage: "event type"},
		{name: "user", field: bridge.FieldUserID, usage: "user id"},
		{name: "message", field: bridge.FieldMessage, usage: "message text"},
		{name: "domain", field: bridge.FieldDomain, usage: "domain"},
		{name: "system", field: bridge.FieldSystem, usage: "originating system"},
		{name: "session", field: bridge.FieldSessionID, usage: "session id"},
		{name: "context", field: bridge.FieldContext, usage: "auxiliary context, JSON or text"},
	}

	cmd := &cobra.Command{
		Use:   "log-insert [key]",
		Short: "Append a structured log record to the list named key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.baseOptions()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				opts[bridge.FieldKey] = args[0]
			}
			for _, f := range flags {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				if f.field == bridge.FieldContext {
					opts[f.field] = jsonOrText(f.value)
				} else {
					opts[f.field] = f.value
				}
			}
			return g.runOperation(cmd, opts, func(ctx context.Context, b *bridge.Bridge, res resolve.Resolver, opts bridge.Options, _ io.Writer) error {
				return b.LogInsert(ctx, res, opts)
			})
		},
	}
	for _, f := range flags {
		cmd.Flags().StringVar(&f.value, f.name, "", f.usage)
	}
	return cmd
}
