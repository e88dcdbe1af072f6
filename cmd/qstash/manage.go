package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/qstash-sdk/qstash-go/qstash"
	"github.com/qstash-sdk/qstash-go/qstash/resources"
)

// idCommand builds a subcommand that takes one name or ID and prints either
// the returned value or a confirmation.
func (a *app) idCommand(use, short string, fn func(ctx context.Context, c *qstash.Client, id string) (any, error)) *cobra.Command {
	action := use
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				v, err := fn(cmd.Context(), c, args[0])
				if err != nil {
					return err
				}
				if v == nil {
					return p.done(action, args[0])
				}
				return p.print(v)
			})
		},
	}
}

func (a *app) listCommand(short string, fn func(ctx context.Context, c *qstash.Client) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				v, err := fn(cmd.Context(), c)
				if err != nil {
					return err
				}
				return p.print(v)
			})
		},
	}
}

func (a *app) queueCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "queue", Short: "Manage queues"}

	var parallelism int
	upsert := &cobra.Command{
		Use:   "upsert <name>",
		Short: "Create or update a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				req := &resources.UpsertQueueRequest{QueueName: args[0], Parallelism: parallelism}
				if err := c.Queues().Upsert(cmd.Context(), req); err != nil {
					return err
				}
				return p.done("upsert", args[0])
			})
		},
	}
	upsert.Flags().IntVar(&parallelism, "parallelism", 1, "Number of messages delivered concurrently")

	cmd.AddCommand(
		a.listCommand("List queues", func(ctx context.Context, c *qstash.Client) (any, error) {
			return c.Queues().List(ctx)
		}),
		a.idCommand("get", "Get a queue", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return c.Queues().Get(ctx, name)
		}),
		upsert,
		a.idCommand("remove", "Remove a queue", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return nil, c.Queues().Remove(ctx, name)
		}),
		a.idCommand("pause", "Pause delivery from a queue", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return nil, c.Queues().Pause(ctx, name)
		}),
		a.idCommand("resume", "Resume delivery from a queue", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return nil, c.Queues().Resume(ctx, name)
		}),
	)
	return cmd
}

func (a *app) scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schedule", Short: "Manage schedules"}

	var (
		f          publishFlags
		cron       string
		scheduleID string
	)
	create := &cobra.Command{
		Use:   "create <destination>",
		Short: "Create a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := f.readBody()
			if err != nil {
				return err
			}
			opts, err := f.options()
			if err != nil {
				return err
			}
			return a.run(func(c *qstash.Client, p *printer) error {
				res, err := c.Schedules().Create(cmd.Context(), &resources.CreateScheduleRequest{
					Destination: args[0],
					Cron:        cron,
					Body:        body,
					ScheduleID:  scheduleID,
					Options:     opts,
				})
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}
	f.register(create)
	create.Flags().StringVar(&cron, "cron", "", "Cron expression")
	create.Flags().StringVar(&scheduleID, "id", "", "Schedule ID, to update an existing schedule")
	create.MarkFlagRequired("cron")

	cmd.AddCommand(
		a.listCommand("List schedules", func(ctx context.Context, c *qstash.Client) (any, error) {
			return c.Schedules().List(ctx)
		}),
		a.idCommand("get", "Get a schedule", func(ctx context.Context, c *qstash.Client, id string) (any, error) {
			return c.Schedules().Get(ctx, id)
		}),
		create,
		a.idCommand("remove", "Remove a schedule", func(ctx context.Context, c *qstash.Client, id string) (any, error) {
			return nil, c.Schedules().Remove(ctx, id)
		}),
		a.idCommand("pause", "Pause a schedule", func(ctx context.Context, c *qstash.Client, id string) (any, error) {
			return nil, c.Schedules().Pause(ctx, id)
		}),
		a.idCommand("resume", "Resume a schedule", func(ctx context.Context, c *qstash.Client, id string) (any, error) {
			return nil, c.Schedules().Resume(ctx, id)
		}),
	)
	return cmd
}

func (a *app) urlGroupCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "url-group", Short: "Manage URL groups"}

	var endpoints []string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add endpoints to a URL group, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := make([]resources.Endpoint, 0, len(endpoints))
			for _, u := range endpoints {
				list = append(list, resources.Endpoint{URL: u})
			}
			return a.run(func(c *qstash.Client, p *printer) error {
				if err := c.URLGroups().UpsertEndpoints(cmd.Context(), args[0], list); err != nil {
					return err
				}
				return p.done("add", args[0])
			})
		},
	}
	add.Flags().StringArrayVar(&endpoints, "endpoint", nil, "Endpoint URL to add")
	add.MarkFlagRequired("endpoint")

	cmd.AddCommand(
		a.listCommand("List URL groups", func(ctx context.Context, c *qstash.Client) (any, error) {
			return c.URLGroups().List(ctx)
		}),
		a.idCommand("get", "Get a URL group", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return c.URLGroups().Get(ctx, name)
		}),
		add,
		a.idCommand("remove", "Remove a URL group", func(ctx context.Context, c *qstash.Client, name string) (any, error) {
			return nil, c.URLGroups().Remove(ctx, name)
		}),
	)
	return cmd
}

func (a *app) dlqCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dlq", Short: "Inspect the dead letter queue"}

	var (
		cursor string
		queue  string
		count  int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List dead-lettered messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &resources.ListDLQParams{}
			if cursor != "" {
				params.Cursor = &cursor
			}
			if queue != "" {
				params.QueueName = &queue
			}
			if count > 0 {
				params.Count = &count
			}
			return a.run(func(c *qstash.Client, p *printer) error {
				res, err := c.DLQ().List(cmd.Context(), params)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}
	list.Flags().StringVar(&cursor, "cursor", "", "Cursor from a previous page")
	list.Flags().StringVar(&queue, "queue", "", "Only messages from this queue")
	list.Flags().IntVar(&count, "count", 0, "Maximum number of messages")

	del := &cobra.Command{
		Use:   "delete <dlq-id>...",
		Short: "Delete messages from the dead letter queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				res, err := c.DLQ().DeleteMany(cmd.Context(), args)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}

	cmd.AddCommand(
		list,
		a.idCommand("get", "Get a dead-lettered message", func(ctx context.Context, c *qstash.Client, id string) (any, error) {
			return c.DLQ().Get(ctx, id)
		}),
		del,
	)
	return cmd
}

func (a *app) eventsCmd() *cobra.Command {
	var (
		cursor    string
		messageID string
		state     string
		count     int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List message delivery events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &resources.ListEventsParams{}
			if cursor != "" {
				params.Cursor = &cursor
			}
			if messageID != "" {
				params.MessageID = &messageID
			}
			if state != "" {
				s := resources.EventState(state)
				params.State = &s
			}
			if count > 0 {
				params.Count = &count
			}
			return a.run(func(c *qstash.Client, p *printer) error {
				res, err := c.Events().List(cmd.Context(), params)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}
	cmd.Flags().StringVar(&cursor, "cursor", "", "Cursor from a previous page")
	cmd.Flags().StringVar(&messageID, "message-id", "", "Only events for this message")
	cmd.Flags().StringVar(&state, "state", "", "Only events in this state, e.g. DELIVERED")
	cmd.Flags().IntVar(&count, "count", 0, "Maximum number of events")
	return cmd
}

func (a *app) keysCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Show or rotate signing keys"}

	keysCommand := func(use, short string, fn func(context.Context, *qstash.Client) (*resources.SigningKeys, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(func(c *qstash.Client, p *printer) error {
					keys, err := fn(cmd.Context(), c)
					if err != nil {
						return err
					}
					return p.print(keys)
				})
			},
		}
	}

	cmd.AddCommand(
		keysCommand("get", "Show the current and next signing keys", func(ctx context.Context, c *qstash.Client) (*resources.SigningKeys, error) {
			return c.SigningKeys().Get(ctx)
		}),
		keysCommand("rotate", "Promote the next signing key and generate a new one", func(ctx context.Context, c *qstash.Client) (*resources.SigningKeys, error) {
			return c.SigningKeys().Rotate(ctx)
		}),
	)
	return cmd
}
