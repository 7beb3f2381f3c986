// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package telemetry wires OpenTelemetry tracing and metrics for the fma
// toolkit.
//
// The CLI calls Init once at startup. Afterwards otel.Tracer and otel.Meter
// return providers backed by the configured exporters, and the search
// Runner records one span and one set of decision metrics per algorithm
// run.
//
// # Exporters
//
// Traces: "otlp", "stdout" or "none" (default "none").
// Metrics: "prometheus", "stdout" or "none" (default "none"). The
// prometheus exporter writes to a private registry served by
// MetricsHandler, so repeated Init calls in tests do not collide.
//
// # Environment Variables
//
//   - FMA_ENV: environment name (default: development)
//   - OTEL_TRACES_EXPORTER: trace exporter type
//   - OTEL_METRICS_EXPORTER: metric exporter type
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//
// # Thread Safety
//
// All exported functions are safe for concurrent use after Init returns.
package telemetry
