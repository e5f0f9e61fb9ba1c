// Package logging builds the process logger on uber/zap.
//
// Production output is JSON for machine parsing; development output is a
// coloured console encoder. Components receive a *zap.Logger and attach
// structured fields (turn_id, provider, stage) rather than formatting strings.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Logging))
//	logger.Info("server starting", zap.String("addr", cfg.Server.Addr()))
package logging
