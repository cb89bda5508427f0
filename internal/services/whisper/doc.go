// Package whisper wraps the whisper-ctranslate2 binary. The engine prefers
// GPU execution when configured and permanently drops to CPU after a device
// failure, so one bad CUDA setup costs a single failed invocation rather
// than one per video.
package whisper
