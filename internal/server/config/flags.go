package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-pr string  pricing collaborator base URL
//	-dc string  debt-check collaborator base URL
//	-ag string  agreements collaborator base URL
//	-t int      collaborator timeout, seconds
//	-v int      quote validity, days
//	-s string   subject hash pepper
//	-x string   requote denylist, comma-separated "street|zip" entries
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-pr", "-dc", "-ag", "-t", "-v", "-s", "-x", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PricingBaseURL, "pr", config.PricingBaseURL, "pricing collaborator base URL")
	fs.StringVar(&config.DebtCheckBaseURL, "dc", config.DebtCheckBaseURL, "debt-check collaborator base URL")
	fs.StringVar(&config.AgreementsBaseURL, "ag", config.AgreementsBaseURL, "agreements collaborator base URL")

	collaboratorTimeout := fs.Int("t", int(config.CollaboratorTimeout.Seconds()), "collaborator_timeout (in seconds)")
	quoteValidity := fs.Int("v", int(config.QuoteValidityDuration.Hours()/24), "quote_validity_duration (in days)")

	fs.StringVar(&config.SubjectHashPepper, "s", config.SubjectHashPepper, "subject hash pepper")
	denylist := fs.String("x", "", "requote denylist, comma-separated street|zip entries")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CollaboratorTimeout = time.Duration(*collaboratorTimeout) * time.Second
	config.QuoteValidityDuration = time.Duration(*quoteValidity) * 24 * time.Hour
	if *denylist != "" {
		config.RequoteDenylist = splitDenylist(*denylist)
	}
}
