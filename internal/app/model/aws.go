package model

import "strings"

// This is only for the configuration, not implementing AWS handler logic.

type AwsConfig struct {
	Profile      string `yaml:"profile"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix,omitempty"`
	StorageClass string `yaml:"storageClass,omitempty"`
}

// Enabled reports whether publishing to S3 is configured.
func (a *AwsConfig) Enabled() bool {
	return strings.TrimSpace(a.Bucket) != ""
}

func (a *AwsConfig) GetStorageClass() string {
	if strings.TrimSpace(a.StorageClass) == "" {
		return "STANDARD"
	}
	return a.StorageClass
}
