// Package qstash provides a Go client for the Upstash QStash API.
//
// QStash is an HTTP message queue and scheduler: messages published to it
// are delivered to a destination URL with retries, delays and callbacks.
// This package covers publishing, queues, schedules, URL groups, the
// dead-letter queue, the event log, signing keys and streamed chat
// completions.
//
// # Basic Usage
//
// Create a client with your token:
//
//	client, err := qstash.NewClient(
//		qstash.WithToken(os.Getenv("QSTASH_TOKEN")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Or read QSTASH_TOKEN and QSTASH_URL from the environment and a .env file:
//
//	client, err := qstash.NewClientFromEnv()
//
// # Publishing
//
//	ctx := context.Background()
//	res, err := client.Messages().PublishJSON(ctx, "https://example.com/hook",
//		map[string]any{"hello": "world"},
//		&resources.PublishOptions{Delay: 10 * time.Second},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res[0].MessageID)
//
// # Error Handling
//
// Every error returned by the client is one of a closed set of variants,
// identified by KindOf. Throttled requests are classified by the headers
// the server sent, and nothing is retried automatically:
//
//	_, err := client.Queues().List(ctx)
//	switch {
//	case errors.As(err, new(*qstash.DailyRateLimitError)):
//		// wait for the daily quota
//	case qstash.IsRateLimitError(err):
//		if d, ok := qstash.ResetAfter(err, time.Now()); ok {
//			time.Sleep(d)
//		}
//	case qstash.IsNotFoundError(err):
//		// ...
//	}
//
// # Streaming
//
// Chat completions can be streamed. Chunks are decoded one at a time as the
// server produces them:
//
//	stream, err := client.LLM().CreateStream(ctx, &resources.ChatCompletionRequest{
//		Model:    "meta-llama/Meta-Llama-3-8B-Instruct",
//		Messages: []resources.ChatMessage{{Role: resources.ChatRoleUser, Content: "Hi"}},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stream.Close()
//	for {
//		chunk, err := stream.Next()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Print(chunk.Content())
//	}
//
// # Receiving
//
// Package receiver verifies the signature QStash attaches to every delivery.
package qstash
