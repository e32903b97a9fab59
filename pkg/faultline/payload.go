// payload.go assembles the common envelope shared by every report.

package faultline

import (
	"encoding/hex"
	"os"
	"time"

	"github.com/google/uuid"
)

// buildBaseData assembles the timestamped, versioned envelope every report
// shares. Caller-supplied extras win for environment, framework, and level;
// other extra keys are merged unless they collide with envelope fields.
func (c *Client) buildBaseData(extra map[string]any) *Item {
	item := &Item{
		Timestamp:   time.Now().Unix(),
		Environment: c.cfg.Environment,
		Level:       LevelError,
		Framework:   c.cfg.Framework,
		UUID:        newItemUUID(),
		Notifier:    c.cfg.Notifier, // value copy; queued items never see reconfiguration
		CodeVersion: c.cfg.CodeVersion,
		Server:      c.serverInfo(),
	}

	for k, v := range extra {
		switch k {
		case "environment":
			if s, ok := v.(string); ok {
				item.Environment = s
			}
		case "framework":
			if s, ok := v.(string); ok {
				item.Framework = s
			}
		case "level":
			switch lv := v.(type) {
			case Level:
				item.Level = lv
			case string:
				item.Level = Level(lv)
			}
		default:
			if _, reserved := reservedItemFields[k]; reserved {
				// Core fields cannot be overridden; drop silently.
				continue
			}
			if item.Extra == nil {
				item.Extra = make(map[string]any)
			}
			item.Extra[k] = v
		}
	}

	return item
}

// newItemUUID returns a fresh random 128-bit identifier as 32 hex chars.
func newItemUUID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// serverInfo describes the reporting host. The configured host wins; the OS
// hostname is the fallback.
func (c *Client) serverInfo() ServerInfo {
	host := c.cfg.Host
	if host == "" {
		host, _ = os.Hostname() // empty hostname is acceptable
	}
	return ServerInfo{
		Host:   host,
		Root:   c.cfg.Root,
		Branch: c.cfg.Branch,
	}
}
