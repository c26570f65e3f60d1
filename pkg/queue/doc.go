// Package queue is the durable job pipeline between the notification producer
// and the notification worker.
//
// The package is organised around a small set of pieces:
//
//   - Broker: the durable queue itself (MemoryBroker, RedisBroker)
//   - Client: an explicit handle on a Broker with an Open/Close lifecycle
//   - Producer: builds Jobs from Messages and hands them to the broker
//   - Worker: claims jobs, runs the registered Handler and applies the RetryPolicy
//
// A producer call returns as soon as the broker acknowledged the job; it never
// waits for a worker. Any number of workers may share one broker: a claimed job
// is locked to exactly one worker until it completes, is rescheduled, or its
// lock expires. There is no ordering across jobs.
//
// # Retries
//
// Every claim counts as an attempt. When a handler fails and attempts remain,
// the job is rescheduled after RetryPolicy.Delay (1s, 2s, ... by default). When
// the last attempt fails, or the handler returned an error wrapped with
// Permanent, the job is moved to the broker's bounded failed-job record and is
// never retried automatically. Operators inspect it through Client.FailedJobs.
//
// # Job keys
//
// Job ids come from a KeyStrategy. The default RecipientTimestampKey derives the
// id from the recipient and the enqueue time and is not an idempotency key:
// two producer calls for the same event create two jobs. PayloadHashKey hashes
// the message so a repeated call inside the broker's dedup window is dropped.
//
// # Usage
//
//	broker := queue.NewRedisBroker(rdb, queue.WithRedisPrefix("campusnotify"))
//	client, _ := queue.NewClient(broker)
//	if err := client.Open(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	producer, _ := queue.NewProducer(client)
//	_, err := producer.Enqueue(ctx, queue.Message{RecipientID: "u-1", Payload: payload})
//
//	worker, _ := queue.NewWorker(client)
//	_ = worker.RegisterHandler(queue.NewTaskHandler(deliver))
//	_ = worker.Start(ctx)
package queue
