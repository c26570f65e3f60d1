// Package config loads typed configuration from environment variables.
//
// Structs are annotated with github.com/caarlos0/env/v11 tags; a .env file in
// the working directory is read once through github.com/joho/godotenv before
// the first parse. Each configuration type is parsed at most once per process
// and cached, so components can call Load for the same struct freely.
//
//	var qc queue.Config
//	if err := config.Load(&qc); err != nil {
//	    return err
//	}
package config
