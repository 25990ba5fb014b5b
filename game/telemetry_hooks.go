package game

// afterTick feeds the optional telemetry sinks.
func (g *Game) afterTick() {
	if g.recorder != nil && g.tick%g.recordEvery == 0 {
		if err := g.recorder.Write(g.Frame(&g.frame)); err != nil {
			g.logger.Error("failed to record frame", "error", err)
		}
	}

	if g.collector == nil {
		return
	}
	g.collector.Record(g.stats)
	if g.collector.ShouldFlush(g.tick) {
		g.flushTelemetry()
	}
}

// flushTelemetry closes the current stats window and hands it to the sinks.
func (g *Game) flushTelemetry() {
	stats := g.collector.Flush(g.stats)
	perfStats := g.perf.Stats()

	if g.onWindow != nil {
		g.onWindow(stats)
	}

	if g.logStats {
		stats.LogStats(g.logger)
		if g.perf != nil {
			perfStats.LogStats(g.logger)
		}
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if g.perf != nil {
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}
