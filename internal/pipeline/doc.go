// Package pipeline provides a framework for processing page inputs in stages.
//
// The pipeline pattern is used to take each CLI input through capture,
// filtering, and output: obtain the document, run the filter engine over
// it, and keep what the caller asked for (report, masked serialization).
// Each stage is implemented as a Step that receives the current job and
// can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running captures
//
// The pipeline supports both individual inputs and batch processing with
// concurrency control using errgroup.
package pipeline
