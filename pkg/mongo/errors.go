package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo: failed to connect")
	ErrHealthcheckFailed      = errors.New("mongo: healthcheck failed")
	ErrEmptyConnectionURL     = errors.New("mongo: empty connection url, use MONGODB_URL env var")
	ErrDatabaseRequired       = errors.New("mongo: database name is required")
)
