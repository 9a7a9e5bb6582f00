// Package config loads and validates the process configuration.
//
// Configuration is read once at startup from the environment, optionally
// seeded from a .env file. The resulting Config is immutable and is passed by
// pointer to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvAccountSID = "TWILIO_ACCOUNT_SID"
	EnvAuthToken  = "TWILIO_AUTH_TOKEN"
	EnvNumber     = "TWILIO_NUMBER"
	EnvPort       = "PORT"
	EnvAPIBaseURL = "TWILIO_API_BASE_URL"
	EnvTimeout    = "TWILIO_TIMEOUT"
)

const (
	// DefaultPort is used when PORT is not set.
	DefaultPort = 3000

	// DefaultAPIBaseURL is the Twilio REST API root.
	DefaultAPIBaseURL = "https://api.twilio.com"
)

// Config holds everything the server needs after startup.
type Config struct {
	// AccountSID identifies the Twilio account and is the basic auth username.
	AccountSID string
	// AuthToken is the Twilio auth secret.
	AuthToken string
	// PhoneNumber is the sender address used for every outgoing message.
	PhoneNumber string
	// Port is the HTTP listen port.
	Port int
	// APIBaseURL overrides the vendor endpoint, mostly for tests.
	APIBaseURL string
	// VendorTimeout bounds a single vendor call. Zero means no timeout.
	VendorTimeout time.Duration
}

// Load reads the optional env file and then validates the process
// environment. A missing env file is not an error when envFile is empty.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a lookup function with the same contract
// as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		AccountSID:  get(EnvAccountSID),
		AuthToken:   get(EnvAuthToken),
		PhoneNumber: get(EnvNumber),
		Port:        DefaultPort,
		APIBaseURL:  DefaultAPIBaseURL,
	}

	var errs []error
	for _, req := range []struct{ key, value string }{
		{EnvAccountSID, cfg.AccountSID},
		{EnvAuthToken, cfg.AuthToken},
		{EnvNumber, cfg.PhoneNumber},
	} {
		if req.value == "" {
			errs = append(errs, &MissingError{Key: req.key})
		}
	}

	if raw := get(EnvPort); raw != "" {
		port, err := ParsePort(raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Port = port
		}
	}

	if raw := get(EnvAPIBaseURL); raw != "" {
		cfg.APIBaseURL = strings.TrimRight(raw, "/")
	}

	if raw := get(EnvTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("invalid %s %q: must be a non-negative duration such as 10s", EnvTimeout, raw))
		} else {
			cfg.VendorTimeout = d
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParsePort parses a listen port. Only plain base-10 integers in 1..65535
// are accepted.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid %s %q: must be an integer between 1 and 65535", EnvPort, raw)
	}
	return port, nil
}

// MissingError reports an absent required environment variable.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s must be provided: set %s in the environment or .env file", e.Key, e.Key)
}
