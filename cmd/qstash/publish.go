package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qstash-sdk/qstash-go/qstash"
	"github.com/qstash-sdk/qstash-go/qstash/resources"
)

// publishFlags are shared by publish, enqueue and schedule create.
type publishFlags struct {
	body        string
	bodyFile    string
	contentType string
	headers     []string
	method      string
	delay       time.Duration
	retries     int
	callback    string
	failure     string
	timeout     time.Duration
	dedupID     string
	contentDup  bool
}

func (f *publishFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.body, "body", "d", "", "Message body")
	fs.StringVar(&f.bodyFile, "body-file", "", "Read the message body from a file")
	fs.StringVar(&f.contentType, "content-type", "", "Content-Type of the body")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Header forwarded to the destination, as key:value")
	fs.StringVar(&f.method, "method", "", "HTTP method used for delivery")
	fs.DurationVar(&f.delay, "delay", 0, "Delay before delivery")
	fs.IntVar(&f.retries, "retries", -1, "Delivery retries")
	fs.StringVar(&f.callback, "callback", "", "Callback URL for delivery responses")
	fs.StringVar(&f.failure, "failure-callback", "", "Callback URL for failed deliveries")
	fs.DurationVar(&f.timeout, "timeout", 0, "Delivery timeout")
	fs.StringVar(&f.dedupID, "dedup-id", "", `Deduplication ID, or "auto" to generate one`)
	fs.BoolVar(&f.contentDup, "content-dedup", false, "Deduplicate on message content")
}

func (f *publishFlags) readBody() ([]byte, error) {
	if f.bodyFile == "" {
		return []byte(f.body), nil
	}
	data, err := os.ReadFile(f.bodyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

func (f *publishFlags) options() (*resources.PublishOptions, error) {
	opts := &resources.PublishOptions{
		Method:                    f.method,
		Delay:                     f.delay,
		Callback:                  f.callback,
		FailureCallback:           f.failure,
		Timeout:                   f.timeout,
		DeduplicationID:           f.dedupID,
		ContentBasedDeduplication: f.contentDup,
	}
	if f.dedupID == "auto" {
		opts.DeduplicationID = uuid.NewString()
	}
	if f.retries >= 0 {
		retries := f.retries
		opts.Retries = &retries
	}
	if f.contentType != "" {
		opts.Headers = http.Header{"Content-Type": []string{f.contentType}}
	}
	for _, h := range f.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header %q, expected key:value", h)
		}
		if opts.ForwardHeaders == nil {
			opts.ForwardHeaders = make(map[string]string)
		}
		opts.ForwardHeaders[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts, nil
}

func (a *app) publishCmd() *cobra.Command {
	var f publishFlags
	cmd := &cobra.Command{
		Use:   "publish <destination>",
		Short: "Publish a message to a URL or URL group",
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
				res, err := c.Messages().Publish(cmd.Context(), args[0], body, opts)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) enqueueCmd() *cobra.Command {
	var f publishFlags
	cmd := &cobra.Command{
		Use:   "enqueue <queue> <destination>",
		Short: "Enqueue a message on a named queue",
		Args:  cobra.ExactArgs(2),
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
				res, err := c.Messages().Enqueue(cmd.Context(), args[0], args[1], body, opts)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) messageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Inspect and cancel messages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Get a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				msg, err := c.Messages().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return p.print(msg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>...",
		Short: "Cancel one or more messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(func(c *qstash.Client, p *printer) error {
				if len(args) == 1 {
					if err := c.Messages().Cancel(cmd.Context(), args[0]); err != nil {
						return err
					}
					return p.done("cancel", args[0])
				}
				res, err := c.Messages().CancelMany(cmd.Context(), args)
				if err != nil {
					return err
				}
				return p.print(res)
			})
		},
	})

	return cmd
}
