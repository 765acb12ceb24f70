package logging

import (
	"errors"
	"fmt"

	"github.com/tarmac-project/httpstub"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

// Capability is the host capability name log entries are routed to.
const Capability = "logging"

// Level is a log severity. Its value is the host function an entry is sent to.
type Level string

const (
	LevelTrace Level = "Trace"
	LevelDebug Level = "Debug"
	LevelInfo  Level = "Info"
	LevelWarn  Level = "Warn"
	LevelError Level = "Error"
)

var severity = map[Level]int{
	LevelTrace: 0,
	LevelDebug: 1,
	LevelInfo:  2,
	LevelWarn:  3,
	LevelError: 4,
}

// ErrUnknownLevel is returned by New when Config.MinLevel is not one of the
// Level constants.
var ErrUnknownLevel = errors.New("unknown log level")

// Client sends log entries to the host runtime.
type Client interface {
	// Log sends message at level. Unknown levels are dropped.
	Log(level Level, message string)

	Info(message string)
	Warn(message string)
	Error(message string)
	Debug(message string)
	Trace(message string)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig httpstub.RuntimeConfig

	// MinLevel drops entries less severe than it. Empty keeps everything.
	MinLevel Level

	// Prefix is prepended to every message.
	Prefix string

	// HostCall overrides the waPC host function used for logging operations.
	HostCall httpstub.HostCall
}

type client struct {
	runtime  httpstub.RuntimeConfig
	hostCall httpstub.HostCall
	floor    int
	prefix   string
}

// New creates a Client that emits logs through the configured host capability.
func New(cfg Config) (Client, error) {
	var floor int
	if cfg.MinLevel != "" {
		s, ok := severity[cfg.MinLevel]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, cfg.MinLevel)
		}
		floor = s
	}

	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &client{
		runtime:  cfg.SDKConfig.WithDefaults(),
		hostCall: hostCall,
		floor:    floor,
		prefix:   cfg.Prefix,
	}, nil
}

// Log is best-effort; host failures are dropped.
func (c *client) Log(level Level, message string) {
	s, ok := severity[level]
	if !ok || s < c.floor {
		return
	}
	_, _ = c.hostCall(c.runtime.Namespace, Capability, string(level), []byte(c.prefix+message))
}

func (c *client) Info(message string)  { c.Log(LevelInfo, message) }
func (c *client) Warn(message string)  { c.Log(LevelWarn, message) }
func (c *client) Error(message string) { c.Log(LevelError, message) }
func (c *client) Debug(message string) { c.Log(LevelDebug, message) }
func (c *client) Trace(message string) { c.Log(LevelTrace, message) }
