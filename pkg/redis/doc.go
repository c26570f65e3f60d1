// Package redis connects to the Redis server that backs the notification
// queue.
//
// Connect parses REDIS_URL, then pings the server with retries until it
// answers or ConnectTimeout elapses:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	broker := queue.NewRedisBroker(client, queue.WithRedisPrefix("campusnotify"))
//
// Healthcheck wraps a ping for readiness checks. Failures are joined with
// ErrHealthcheckFailed, and connection failures with ErrRedisNotReady, so both
// can be matched with errors.Is.
package redis
