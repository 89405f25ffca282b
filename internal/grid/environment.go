// Package grid builds and submits Grid Engine jobs for experiment steps.
//
// The package is split into pure parts (environment validation, job
// parameters, dispatcher and job file rendering) and the Submitter, the only
// part that talks to the scheduler.
package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/gridlab/internal/models"
)

// Priority bounds accepted by the scheduler. Values above 0 need privileges.
const (
	MinPriority = -1023
	MaxPriority = 1024
)

// EnvironmentConfig is the immutable configuration of one grid environment.
type EnvironmentConfig struct {
	Queue            string
	Priority         int
	HostRestriction  string
	HostRestrictions map[string][]string
	Email            string
}

// Preset holds the defaults of one supported cluster type.
type Preset struct {
	Name             string
	DefaultQueue     string
	DefaultPriority  int
	HostRestrictions map[string][]string
}

// Presets lists the supported cluster types by name.
var Presets = map[string]Preset{
	"oge": {
		Name: "oge",
	},
	"oge-allq": {
		Name:         "oge-allq",
		DefaultQueue: "all.q",
	},
}

// DefaultPreset is used when an experiment does not name one.
const DefaultPreset = "oge"

// Overrides are explicit environment settings; nil fields keep the preset value.
type Overrides struct {
	Queue            *string
	Priority         *int
	HostRestriction  *string
	HostRestrictions map[string][]string
	Email            string
}

// NewEnvironmentConfig applies a preset and overrides, then validates the result.
func NewEnvironmentConfig(presetName string, o Overrides) (EnvironmentConfig, error) {
	if presetName == "" {
		presetName = DefaultPreset
	}
	preset, ok := Presets[presetName]
	if !ok {
		return EnvironmentConfig{}, &ConfigError{Field: "preset", Value: presetName, Err: ErrUnknownPreset}
	}

	restrictions := make(map[string][]string, len(preset.HostRestrictions)+len(o.HostRestrictions))
	for name, hosts := range preset.HostRestrictions {
		restrictions[name] = append([]string(nil), hosts...)
	}
	for name, hosts := range o.HostRestrictions {
		restrictions[name] = append([]string(nil), hosts...)
	}

	env := EnvironmentConfig{
		Queue:            preset.DefaultQueue,
		Priority:         preset.DefaultPriority,
		HostRestrictions: restrictions,
		Email:            o.Email,
	}
	if o.Queue != nil {
		env.Queue = *o.Queue
	}
	if o.Priority != nil {
		env.Priority = *o.Priority
	}
	if o.HostRestriction != nil {
		env.HostRestriction = *o.HostRestriction
	}

	if err := env.Validate(); err != nil {
		return EnvironmentConfig{}, err
	}
	return env, nil
}

// Validate checks the queue, the priority range and the host restriction key.
func (e EnvironmentConfig) Validate() error {
	if strings.TrimSpace(e.Queue) == "" {
		return &ConfigError{Field: "queue", Value: e.Queue, Err: ErrMissingQueue}
	}
	if e.Priority < MinPriority || e.Priority > MaxPriority {
		return &ConfigError{
			Field: "priority",
			Value: e.Priority,
			Err:   fmt.Errorf("%w: must be in [%d, %d]", ErrInvalidPriority, MinPriority, MaxPriority),
		}
	}
	if _, err := ResolveHostSpec(e.HostRestrictions, e.HostRestriction); err != nil {
		return err
	}
	return nil
}

// ResolveHostSpec turns a restriction key into a scheduler host filter.
// An empty key yields the unrestricted placeholder.
func ResolveHostSpec(restrictions map[string][]string, key string) (string, error) {
	if key == "" {
		return models.HostSpecUnrestricted, nil
	}
	hosts, ok := restrictions[key]
	if !ok {
		return "", &ConfigError{
			Field: "host_restriction",
			Value: key,
			Err:   fmt.Errorf("%w (known: %s)", ErrUnknownHostRestriction, strings.Join(restrictionNames(restrictions), ", ")),
		}
	}
	return fmt.Sprintf(`#$ -l hostname="%s"`, strings.Join(hosts, "|")), nil
}

func restrictionNames(restrictions map[string][]string) []string {
	names := make([]string, 0, len(restrictions))
	for name := range restrictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
