// Package separation runs source-separation jobs: it routes a task to a
// TensorFlow Lite model, loads it with failure quarantine, performs the
// inference, rebuilds the kept mix without the removed instrument and
// writes the result as WAV. One job runs at a time per pipeline.
package separation
