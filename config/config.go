// Package config holds the simulator's run configuration: the committee
// membership and voting power, the timeout schedule and the gossip delay
// bounds. It follows the teacher's eth/ethconfig package shape — a single
// Config struct plus a package-level Defaults value — loadable from a TOML
// file with github.com/naoina/toml, the library the teacher's node config
// loader uses for the same purpose.
package config

import (
	"os"
	"time"

	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/tmsim/consensus/consensus/tendermint/core"
)

// Validator describes one committee member's identifier and voting power
// as they appear in a config file.
type Validator struct {
	ID     string `toml:"id"`
	Power  uint64 `toml:"power"`
}

// Config is the full set of knobs a run needs (spec.md §4, §9's "Run
// configuration" glossary entry).
type Config struct {
	Validators []Validator `toml:"validators"`

	ProposeTimeout   time.Duration `toml:"propose_timeout"`
	PrevoteTimeout   time.Duration `toml:"prevote_timeout"`
	PrecommitTimeout time.Duration `toml:"precommit_timeout"`
	TimeoutDelta     time.Duration `toml:"timeout_delta"`

	GossipMinDelay time.Duration `toml:"gossip_min_delay"`
	GossipMaxDelay time.Duration `toml:"gossip_max_delay"`

	RunDuration time.Duration `toml:"run_duration"`
}

// Defaults is the four-validator demo committee spec.md's worked example
// uses: A holds two units of voting power, B/C/D hold one each, out of a
// total of five, so quorum is three (spec.md §4.4 worked example) and the
// run lasts ten seconds, matching the reference implementation's sim.py.
var Defaults = Config{
	Validators: []Validator{
		{ID: "A", Power: 2},
		{ID: "B", Power: 1},
		{ID: "C", Power: 1},
		{ID: "D", Power: 1},
	},
	ProposeTimeout:   200 * time.Millisecond,
	PrevoteTimeout:   200 * time.Millisecond,
	PrecommitTimeout: 200 * time.Millisecond,
	TimeoutDelta:     50 * time.Millisecond,
	GossipMinDelay:   10 * time.Millisecond,
	GossipMaxDelay:   50 * time.Millisecond,
	RunDuration:      10 * time.Second,
}

// Load reads a TOML config file, starting from Defaults and overwriting
// whatever the file sets — mirroring the teacher's pattern of seeding a
// Config literal with Defaults before decoding user overrides on top.
func Load(path string) (*Config, error) {
	cfg := Defaults
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that at least one validator is configured and that the
// gossip delay bounds are sane, surfacing a core.ConfigurationError
// rather than letting an empty committee panic downstream. It does not
// check validator ids, voting powers or timeout durations; duplicate ids
// and zero power are reported by Committee.
func (c *Config) Validate() error {
	if len(c.Validators) == 0 {
		return errors.Wrap(&core.ConfigurationError{Reason: "no validators configured"}, "validate config")
	}
	if c.GossipMinDelay <= 0 || c.GossipMaxDelay < c.GossipMinDelay {
		return errors.Wrap(&core.ConfigurationError{Reason: "invalid gossip delay bounds"}, "validate config")
	}
	return nil
}

// Committee builds a core.Committee from the configured validator list.
func (c *Config) Committee() (*core.Committee, error) {
	order := make([]string, 0, len(c.Validators))
	power := make(map[string]uint64, len(c.Validators))
	for _, v := range c.Validators {
		order = append(order, v.ID)
		power[v.ID] = v.Power
	}
	return core.NewCommittee(order, power)
}

// Timeouts builds a core.TimeoutConfig from the configured durations.
func (c *Config) Timeouts() core.TimeoutConfig {
	return core.TimeoutConfig{
		Propose:   c.ProposeTimeout,
		Prevote:   c.PrevoteTimeout,
		Precommit: c.PrecommitTimeout,
		Delta:     c.TimeoutDelta,
	}
}
