// Package history records render runs in the embedded KV engine.
//
// Key layout:
//
//	run/<id>                  JSON domain.Run
//	run/<id>/frame/<000000>   JSON domain.FrameRecord
//
// Run IDs are lowercase ULIDs, so key order is creation order.
package history
