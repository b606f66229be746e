package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/dpyd-af/internal/annotate"
	"github.com/inodb/dpyd-af/internal/datasource/variantvalidator"
	"github.com/inodb/dpyd-af/internal/vcf"
)

// Config keys
const (
	keyGene                = "gene"
	keyRegion              = "region"
	keyAssembly            = "assembly"
	keyPopulations         = "populations"
	keyOverrides           = "overrides"
	keyFunctionLabels      = "labels.functional"
	keyClinicalLabels      = "labels.clinical"
	keyLOFCodes            = "labels.lof"
	keyVEPKey              = "vep.key"
	keyTranscriptsURL      = "transcripts.url"
	keyTranscriptsBatch    = "transcripts.batch_size"
	keyTranscriptsInterval = "transcripts.interval"
	keyTranscriptsRetries  = "transcripts.retries"
)

// DPYD_AF_LABELS_LOF maps to labels.lof.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	d := annotate.DefaultConfig()
	viper.SetDefault(keyGene, d.Gene)
	viper.SetDefault(keyRegion, d.Region.String())
	viper.SetDefault(keyAssembly, "GRCh37")
	viper.SetDefault(keyPopulations, d.Populations)
	viper.SetDefault(keyOverrides, d.Overrides)
	viper.SetDefault(keyFunctionLabels, d.FunctionLabels)
	viper.SetDefault(keyClinicalLabels, d.ClinicalLabels)
	viper.SetDefault(keyLOFCodes, d.LOFCodes)
	viper.SetDefault(keyVEPKey, d.VEPKey)
	viper.SetDefault(keyTranscriptsURL, variantvalidator.DefaultBaseURL)
	viper.SetDefault(keyTranscriptsBatch, variantvalidator.DefaultBatchSize)
	viper.SetDefault(keyTranscriptsInterval, time.Second)
	viper.SetDefault(keyTranscriptsRetries, 5)
}

func parseRegionValue(s string) (vcf.Region, error) {
	region, err := vcf.ParseRegion(s)
	if err != nil {
		return vcf.Region{}, fmt.Errorf("config %s: %w", keyRegion, err)
	}
	return region, nil
}

// loadConfig builds the run configuration from viper.
func loadConfig() (annotate.Config, error) {
	region, err := parseRegionValue(viper.GetString(keyRegion))
	if err != nil {
		return annotate.Config{}, err
	}

	cfg := annotate.Config{
		Gene:           strings.TrimSpace(viper.GetString(keyGene)),
		Region:         region,
		Populations:    stringList(keyPopulations),
		Overrides:      stringList(keyOverrides),
		FunctionLabels: stringList(keyFunctionLabels),
		ClinicalLabels: stringList(keyClinicalLabels),
		LOFCodes:       stringList(keyLOFCodes),
		VEPKey:         viper.GetString(keyVEPKey),
	}
	if err := cfg.Validate(); err != nil {
		return annotate.Config{}, err
	}
	return cfg, nil
}

// stringList reads a list that may also be given as one comma-separated
// string, as env variables and "config set" produce.
func stringList(key string) []string {
	switch v := viper.Get(key).(type) {
	case string:
		return splitList(v)
	case []string:
		var out []string
		for _, item := range v {
			out = append(out, splitList(item)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, splitList(fmt.Sprint(item))...)
		}
		return out
	case nil:
		return nil
	default:
		return splitList(fmt.Sprint(v))
	}
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func transcriptOptions() variantvalidator.Options {
	return variantvalidator.Options{
		BaseURL:    viper.GetString(keyTranscriptsURL),
		Assembly:   viper.GetString(keyAssembly),
		BatchSize:  viper.GetInt(keyTranscriptsBatch),
		Interval:   viper.GetDuration(keyTranscriptsInterval),
		MaxRetries: uint64(max(viper.GetInt(keyTranscriptsRetries), 0)),
	}
}

// bindFlags binds config keys to the named flags of the running command.
// Binding happens at run time because several commands share keys.
func bindFlags(keys map[string]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for key, name := range keys {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("bind flag --%s: %w", name, err)
			}
		}
		return nil
	}
}
