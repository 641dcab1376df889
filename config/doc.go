// Package config loads client configuration from ribbit.yml, a .env file
// and the environment.
//
// It uses Viper for the YAML file and environment binding and godotenv for
// .env files. Environment variables override file values; keys in the
// ribbit section map directly (ribbit.consumer_key is RIBBIT_CONSUMER_KEY),
// other sections take the RIBBIT_ prefix (http.timeout is
// RIBBIT_HTTP_TIMEOUT).
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("ribbit.yml"))
//	if err != nil {
//	    return err
//	}
//	client, err := httpclient.New(cfg.Store(), cfg.ClientConfig())
package config
