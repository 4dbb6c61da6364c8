// Package observe provides the observability primitives for Hydrogen:
// OpenTelemetry metric instruments, a Prometheus exporter bridge set up by
// [InitProvider], and an HTTP transport that counts Lavalink REST calls.
//
// Tests should use [NewMetrics] with their own [metric.MeterProvider] to
// avoid cross-test pollution.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Hydrogen metrics.
const meterName = "github.com/hydrogenbot/hydrogen"

// Metrics holds all OpenTelemetry metric instruments for the bot. All fields
// are safe for concurrent use; the underlying OTel types handle their own
// synchronisation.
type Metrics struct {
	// PlayersActive tracks the number of live guild players.
	PlayersActive metric.Int64UpDownCounter

	// TracksStarted counts track starts. Use with attribute:
	//   attribute.String("node", ...)
	TracksStarted metric.Int64Counter

	// TracksEnded counts track ends. Use with attributes:
	//   attribute.String("node", ...), attribute.String("reason", ...)
	TracksEnded metric.Int64Counter

	// RestRequests counts Lavalink REST calls. Use with attributes:
	//   attribute.String("node", ...), attribute.String("operation", ...),
	//   attribute.String("status", ...)
	RestRequests metric.Int64Counter

	// NodePlayers records the player count a node reports in its stats
	// frames.
	NodePlayers metric.Int64Gauge

	// NodePlayingPlayers records the actively playing player count per node.
	NodePlayingPlayers metric.Int64Gauge
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.PlayersActive, err = m.Int64UpDownCounter("hydrogen.players.active",
		metric.WithDescription("Number of live guild players."),
	); err != nil {
		return nil, err
	}
	if met.TracksStarted, err = m.Int64Counter("hydrogen.tracks.started",
		metric.WithDescription("Total tracks started by node."),
	); err != nil {
		return nil, err
	}
	if met.TracksEnded, err = m.Int64Counter("hydrogen.tracks.ended",
		metric.WithDescription("Total tracks ended by node and end reason."),
	); err != nil {
		return nil, err
	}
	if met.RestRequests, err = m.Int64Counter("hydrogen.node.rest.requests",
		metric.WithDescription("Total Lavalink REST calls by node, operation, and status."),
	); err != nil {
		return nil, err
	}
	if met.NodePlayers, err = m.Int64Gauge("hydrogen.node.players",
		metric.WithDescription("Player count reported by a node's stats frames."),
	); err != nil {
		return nil, err
	}
	if met.NodePlayingPlayers, err = m.Int64Gauge("hydrogen.node.playing_players",
		metric.WithDescription("Actively playing player count reported by a node's stats frames."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordTrackStarted records a track start on the given node.
func (m *Metrics) RecordTrackStarted(ctx context.Context, node string) {
	m.TracksStarted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("node", node)),
	)
}

// RecordTrackEnded records a track end on the given node.
func (m *Metrics) RecordTrackEnded(ctx context.Context, node, reason string) {
	m.TracksEnded.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("node", node),
			attribute.String("reason", reason),
		),
	)
}

// RecordNodeStats records the player gauges from a node stats frame.
func (m *Metrics) RecordNodeStats(ctx context.Context, node string, players, playing int64) {
	attrs := metric.WithAttributes(attribute.String("node", node))
	m.NodePlayers.Record(ctx, players, attrs)
	m.NodePlayingPlayers.Record(ctx, playing, attrs)
}

// RecordRestRequest records a Lavalink REST call.
func (m *Metrics) RecordRestRequest(ctx context.Context, node, operation, status string) {
	m.RestRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("node", node),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}
