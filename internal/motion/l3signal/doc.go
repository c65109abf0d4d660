// Package l3signal owns Layer 3 (Signal) of the motion data model.
//
// Responsibilities: bounded per-channel history, causal smoothing and
// rolling statistics over a stream of per-frame angle values. Nothing in
// this layer looks ahead; every output depends only on past and current
// samples.
// Key types: HistoryBuffer, Smoother, RollingStats, Channel.
//
// Dependency rule: L3 may depend on L1 and L2.
package l3signal
