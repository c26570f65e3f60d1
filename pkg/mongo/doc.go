// Package mongo connects to MongoDB through the official v2 driver.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// Connect retries until the server answers a ping or the context ends, and
// Healthcheck returns a check for readiness endpoints. Failures are reported
// with ErrFailedToConnectToMongo and ErrHealthcheckFailed so callers can use
// errors.Is.
package mongo
