// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/canon-engine/internal/secrets"
	"github.com/pdiddy/canon-engine/pkg/types"
)

func init() {
	viper.SetDefault("index.canonical", true)
	viper.SetDefault("index.sort_inputs", false)
	viper.SetDefault("store.max_results", 20)
	viper.SetDefault("elastic.url", "http://localhost:9200")
	viper.SetDefault("elastic.index", "canon_segments")
	viper.SetDefault("elastic.chunk_size", 500)
	viper.SetDefault("elastic.max_retries", 5)
	viper.SetDefault("elastic.timeout", 60*time.Second)
	viper.SetDefault("elastic.user_agent", "canon-engine/"+version)
}

// pipelineConfig assembles the stage configuration from viper, which merges
// defaults, the config file, CANON_ENGINE_* environment variables and
// bound flags in increasing precedence.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Index: types.IndexConfig{
			Canonical:  viper.GetBool("index.canonical"),
			SortInputs: viper.GetBool("index.sort_inputs"),
		},
		Store: types.StoreConfig{
			Dir:        viper.GetString("store.dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Elastic: elasticConfig(),
		Log:     logConfig(),
	}
}

func elasticConfig() types.ElasticConfig {
	password, _ := loadedSecrets.Resolve(viper.GetString("elastic.password"), secrets.ElasticPassword)
	apiKey, _ := loadedSecrets.Resolve(viper.GetString("elastic.api_key"), secrets.ElasticAPIKey)
	return types.ElasticConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("elastic.timeout"),
			UserAgent: viper.GetString("elastic.user_agent"),
		},
		URL:        viper.GetString("elastic.url"),
		User:       viper.GetString("elastic.user"),
		Password:   password,
		APIKey:     apiKey,
		Index:      viper.GetString("elastic.index"),
		ChunkSize:  viper.GetInt("elastic.chunk_size"),
		MaxRetries: viper.GetInt("elastic.max_retries"),
		Refresh:    viper.GetBool("elastic.refresh"),
	}
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}
}
