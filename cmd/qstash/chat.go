package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qstash-sdk/qstash-go/qstash"
	"github.com/qstash-sdk/qstash-go/qstash/resources"
)

const defaultChatModel = "meta-llama/Meta-Llama-3-8B-Instruct"

func (a *app) chatCmd() *cobra.Command {
	var (
		model     string
		system    string
		maxTokens int
		noStream  bool
	)
	cmd := &cobra.Command{
		Use:   "chat <prompt>...",
		Short: "Send a prompt to the LLM API and stream the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &resources.ChatCompletionRequest{Model: model}
			if system != "" {
				req.Messages = append(req.Messages, resources.ChatMessage{Role: resources.ChatRoleSystem, Content: system})
			}
			req.Messages = append(req.Messages, resources.ChatMessage{Role: resources.ChatRoleUser, Content: strings.Join(args, " ")})
			if maxTokens > 0 {
				req.MaxTokens = &maxTokens
			}

			return a.run(func(c *qstash.Client, p *printer) error {
				if noStream {
					completion, err := c.LLM().Create(cmd.Context(), req)
					if err != nil {
						return err
					}
					return p.print(completion)
				}
				return streamChat(cmd, c, req)
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", defaultChatModel, "Model to use")
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens in the reply")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the full completion and print it")
	return cmd
}

// streamChat writes each content delta as it arrives.
func streamChat(cmd *cobra.Command, c *qstash.Client, req *resources.ChatCompletionRequest) error {
	stream, err := c.LLM().CreateStream(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer stream.Close()

	out := cmd.OutOrStdout()
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		fmt.Fprint(out, chunk.Content())
	}
	fmt.Fprintln(out)
	return nil
}
