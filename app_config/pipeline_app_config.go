package app_config

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// This is the app config for pipeline execution.
type PipelineAppConfig struct {
	// Rebuild the scheduler's job set from the rules table every other
	// interval. Rule edits take effect within this window.
	SCHEDULER_REFRESH_SECOND int64 `yaml:"SCHEDULER_REFRESH_SECOND"`
	// Due-job check resolution.
	SCHEDULER_TICK_SECOND int64 `yaml:"SCHEDULER_TICK_SECOND"`
	// Upper bound for a single platform page fetch.
	FETCH_TIMEOUT_SECOND int64 `yaml:"FETCH_TIMEOUT_SECOND"`
	// How many unprocessed posts one startup NLP sweep picks up.
	NLP_SWEEP_BATCH_SIZE int `yaml:"NLP_SWEEP_BATCH_SIZE"`
	// Listen address of the pipeline's own HTTP surface.
	HTTP_ADDRESS string `yaml:"HTTP_ADDRESS"`
}

func ParsePipelineAppConfig(path string) PipelineAppConfig {
	c := PipelineAppConfig{}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}
