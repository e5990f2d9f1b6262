package config

import (
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// Flags holds all command line flag values
type Flags struct {
	// General
	configFile *string
	version    *bool

	// Server
	serverPort *int
	serverHost *string

	// Data
	dataCertificates *string
	dataAdmins       *string
	staticDir        *string

	// Session
	sessionTTL           *string
	sessionSweepInterval *string
	sessionCookieSecure  *bool

	// Logging
	logLevel  *string
	logFormat *string

	// Security
	securityCORSEnabled *bool
	securityCORSOrigins *[]string
}

// ParseFlags defines and parses all command line flags
func ParseFlags() (*Flags, string, bool) {
	f := &Flags{}

	// General flags
	f.configFile = flag.StringP("config", "c", "config.yaml", "Path to configuration file")
	f.version = flag.BoolP("version", "v", false, "Print version and exit")

	// Server flags
	f.serverPort = flag.Int("server.port", 0, "HTTP server port")
	f.serverHost = flag.String("server.host", "", "HTTP server bind address")

	// Data flags
	f.dataCertificates = flag.String("data.certificates", "", "Path to certificates.json")
	f.dataAdmins = flag.String("data.admins", "", "Path to admin.json")
	f.staticDir = flag.String("data.static-dir", "", "Directory of static assets")

	// Session flags
	f.sessionTTL = flag.String("session.ttl", "", "Session lifetime (e.g., 1h)")
	f.sessionSweepInterval = flag.String("session.sweep-interval", "", "Expired session sweep interval (e.g., 5m)")
	f.sessionCookieSecure = flag.Bool("session.cookie-secure", true, "Mark the session cookie Secure")

	// Logging flags
	f.logLevel = flag.StringP("log.level", "l", "", "Log level (debug, info, warn, error)")
	f.logFormat = flag.String("log.format", "", "Log format (json or console)")

	// Security flags
	f.securityCORSEnabled = flag.Bool("security.cors-enabled", false, "Enable CORS")
	f.securityCORSOrigins = flag.StringSlice("security.cors-origins", nil, "CORS allowed origins (can be specified multiple times)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "CertVerif - certificate issuance and verification service\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfiguration priority (highest to lowest):\n")
		fmt.Fprintf(os.Stderr, "  1. Command line flags\n")
		fmt.Fprintf(os.Stderr, "  2. Environment variables (CERTVERIF_*)\n")
		fmt.Fprintf(os.Stderr, "  3. Configuration file (default: config.yaml)\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  # Start with custom config file\n")
		fmt.Fprintf(os.Stderr, "  %s --config /etc/certverif/config.yaml\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Override port and data location\n")
		fmt.Fprintf(os.Stderr, "  %s --server.port 9000 --data.certificates /var/lib/certverif/certificates.json\n\n", os.Args[0])
	}

	flag.Parse()

	return f, *f.configFile, *f.version
}

// Apply copies every flag the user actually set onto the configuration.
func (f *Flags) Apply(cfg *Config) error {
	if changed("server.port") {
		cfg.Server.Port = *f.serverPort
	}
	if changed("server.host") {
		cfg.Server.Host = *f.serverHost
	}
	if changed("data.certificates") {
		cfg.Data.CertificatesPath = *f.dataCertificates
	}
	if changed("data.admins") {
		cfg.Data.AdminsPath = *f.dataAdmins
	}
	if changed("data.static-dir") {
		cfg.Data.StaticDir = *f.staticDir
	}
	if changed("session.ttl") {
		d, err := time.ParseDuration(*f.sessionTTL)
		if err != nil {
			return fmt.Errorf("--session.ttl: %w", err)
		}
		cfg.Session.TTL = d
	}
	if changed("session.sweep-interval") {
		d, err := time.ParseDuration(*f.sessionSweepInterval)
		if err != nil {
			return fmt.Errorf("--session.sweep-interval: %w", err)
		}
		cfg.Session.SweepInterval = d
	}
	if changed("session.cookie-secure") {
		cfg.Session.CookieSecure = *f.sessionCookieSecure
	}
	if changed("log.level") {
		cfg.Logging.Level = *f.logLevel
	}
	if changed("log.format") {
		cfg.Logging.Format = *f.logFormat
	}
	if changed("security.cors-enabled") {
		cfg.Security.CORSEnabled = *f.securityCORSEnabled
	}
	if changed("security.cors-origins") {
		cfg.Security.CORSOrigins = *f.securityCORSOrigins
	}
	return nil
}

func changed(name string) bool {
	lookup := flag.Lookup(name)
	return lookup != nil && lookup.Changed
}
