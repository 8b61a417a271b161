// Metric definitions for the command layer. Registered with the default
// Prometheus registry via promauto; the HTTP layer exposes them on /metrics.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access"

// CommandsTotal counts executed commands.
// Labels:
//   - aggregate: "user", "device", "tool", "qualification"
//   - operation: command name (e.g. "attach_tool")
//   - outcome:   "success" or "error"
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of commands executed, by aggregate, operation and outcome.",
	},
	[]string{"aggregate", "operation", "outcome"},
)

// VersionConflictsTotal counts optimistic appends lost to a concurrent writer.
var VersionConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "version_conflicts_total",
		Help:      "Total number of appends rejected by the optimistic version check.",
	},
	[]string{"aggregate"},
)

// CascadeCommandsTotal counts follow-up commands issued by cross-aggregate
// event handlers.
// Labels:
//   - trigger: the event type that caused the cascade
//   - outcome: "success" or "error"
var CascadeCommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_commands_total",
		Help:      "Total number of cascade follow-up commands, by triggering event type and outcome.",
	},
	[]string{"trigger", "outcome"},
)
