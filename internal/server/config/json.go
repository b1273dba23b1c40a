package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/quotecore/internal/flagx"
	"github.com/dmitrijs2005/quotecore/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	PricingBaseURL        string         `json:"pricing_base_url"`
	DebtCheckBaseURL      string         `json:"debt_check_base_url"`
	AgreementsBaseURL     string         `json:"agreements_base_url"`
	CollaboratorTimeout   timex.Duration `json:"collaborator_timeout"`
	QuoteValidityDuration timex.Duration `json:"quote_validity_duration"`
	SubjectHashPepper     string         `json:"subject_hash_pepper"`
	RequoteDenylist       []string       `json:"requote_denylist"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a half-applied config is worse than a crash at boot.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.PricingBaseURL = c.PricingBaseURL
	config.DebtCheckBaseURL = c.DebtCheckBaseURL
	config.AgreementsBaseURL = c.AgreementsBaseURL
	config.CollaboratorTimeout = time.Duration(c.CollaboratorTimeout.Duration)
	config.QuoteValidityDuration = time.Duration(c.QuoteValidityDuration.Duration)
	config.SubjectHashPepper = c.SubjectHashPepper
	config.RequoteDenylist = c.RequoteDenylist
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
