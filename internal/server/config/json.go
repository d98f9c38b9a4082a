package config

import (
	"encoding/json"
	"os"

	"github.com/clipfeed/clipfeed/internal/flagx"
	"github.com/clipfeed/clipfeed/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`

	CodeTTL            timex.Duration `json:"code_ttl"`
	ResendWindow       timex.Duration `json:"resend_window"`
	MaxResends         int            `json:"max_resends"`
	MaxConfirmAttempts int            `json:"max_confirm_attempts"`

	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	BlobURLValidity timex.Duration `json:"blob_url_validity"`

	SMSGatewayURL string `json:"sms_gateway_url"`
	SMSAPIKey     string `json:"sms_api_key"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. Missing flag means no JSON is loaded. Empty JSON
// fields leave the current value untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddrHTTP != "" {
		cfg.EndpointAddrHTTP = jc.EndpointAddrHTTP
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.RefreshTokenValidityDuration.Duration != 0 {
		cfg.RefreshTokenValidityDuration = jc.RefreshTokenValidityDuration.Duration
	}
	if jc.CodeTTL.Duration != 0 {
		cfg.CodeTTL = jc.CodeTTL.Duration
	}
	if jc.ResendWindow.Duration != 0 {
		cfg.ResendWindow = jc.ResendWindow.Duration
	}
	if jc.MaxResends != 0 {
		cfg.MaxResends = jc.MaxResends
	}
	if jc.MaxConfirmAttempts != 0 {
		cfg.MaxConfirmAttempts = jc.MaxConfirmAttempts
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.BlobURLValidity.Duration != 0 {
		cfg.BlobURLValidity = jc.BlobURLValidity.Duration
	}
	if jc.SMSGatewayURL != "" {
		cfg.SMSGatewayURL = jc.SMSGatewayURL
	}
	if jc.SMSAPIKey != "" {
		cfg.SMSAPIKey = jc.SMSAPIKey
	}
}
