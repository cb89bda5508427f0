package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

const (
	deviceCUDA = "cuda"
	deviceCPU  = "cpu"

	computeTypeCUDA = "float16"
	computeTypeCPU  = "int8"
)

// DeviceError reports that the transcription backend could not run on the
// requested device. The engine falls back to CPU when it sees one for CUDA.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s unavailable: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// deviceFailureMarkers are the strings ctranslate2 emits when GPU
// initialization fails. Classification happens here, once; callers only see
// the typed DeviceError.
var deviceFailureMarkers = []string{
	"CUDA",
	"cuda",
	"cublas",
	"cudnn",
	"out of memory",
	"no GPU",
}

// CommandRunner executes a command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures the transcription engine.
type Options struct {
	Binary      string
	Model       string
	Language    string
	CUDAEnabled bool
}

// Segment is one timestamped span from the whisper JSON output.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a completed transcription.
type Result struct {
	Text     string
	Language string
	Device   string
	Segments []Segment
}

type whisperPayload struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Engine invokes whisper-ctranslate2. A single model load saturates a GPU
// (or all CPU cores), so the engine serializes transcriptions behind a
// mutex; parallelism lives in the download stage instead.
type Engine struct {
	opts   Options
	runner CommandRunner

	mu     sync.Mutex
	device string
}

// NewEngine creates a transcription engine.
func NewEngine(opts Options) *Engine {
	if opts.Binary == "" {
		opts.Binary = "whisper-ctranslate2"
	}
	if opts.Model == "" {
		opts.Model = "base"
	}
	device := deviceCPU
	if opts.CUDAEnabled {
		device = deviceCUDA
	}
	return &Engine{opts: opts, device: device}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Engine) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// Device returns the device currently in use.
func (e *Engine) Device() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.device
}

// Model returns the configured model name.
func (e *Engine) Model() string {
	return e.opts.Model
}

// Transcribe runs the engine over one audio file and parses the JSON output
// written next to it in outputDir. A CUDA device failure triggers a one-time
// fallback: the engine retries the same file on CPU and stays there.
func (e *Engine) Transcribe(ctx context.Context, audioPath, outputDir string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if audioPath == "" {
		return Result{}, errors.New("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	result, err := e.transcribeOn(ctx, e.device, audioPath, outputDir)
	if err != nil {
		var devErr *DeviceError
		if errors.As(err, &devErr) && e.device == deviceCUDA {
			e.device = deviceCPU
			return e.transcribeOn(ctx, deviceCPU, audioPath, outputDir)
		}
		return Result{}, err
	}
	return result, nil
}

func (e *Engine) transcribeOn(ctx context.Context, device, audioPath, outputDir string) (Result, error) {
	computeType := computeTypeCPU
	if device == deviceCUDA {
		computeType = computeTypeCUDA
	}

	args := []string{
		audioPath,
		"--model", e.opts.Model,
		"--device", device,
		"--compute_type", computeType,
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if e.opts.Language != "" {
		args = append(args, "--language", e.opts.Language)
	}

	output, err := e.run(ctx, args...)
	if err != nil {
		if isDeviceFailure(output, err) {
			return Result{}, &DeviceError{Device: device, Err: err}
		}
		return Result{}, fmt.Errorf("whisper: %w", err)
	}

	jsonPath := outputJSONPath(audioPath, outputDir)
	payload, err := loadPayload(jsonPath)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Text:     strings.TrimSpace(payload.Text),
		Language: payload.Language,
		Device:   device,
		Segments: payload.Segments,
	}
	if result.Text == "" {
		parts := make([]string, 0, len(payload.Segments))
		for _, segment := range payload.Segments {
			if text := strings.TrimSpace(segment.Text); text != "" {
				parts = append(parts, text)
			}
		}
		result.Text = strings.Join(parts, " ")
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, args ...string) ([]byte, error) {
	if e.runner != nil {
		return e.runner(ctx, e.opts.Binary, args...)
	}
	cmd := exec.CommandContext(ctx, e.opts.Binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", e.opts.Binary, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func isDeviceFailure(output []byte, err error) bool {
	text := string(output) + " " + err.Error()
	for _, marker := range deviceFailureMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func outputJSONPath(audioPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".json")
}

func loadPayload(jsonPath string) (whisperPayload, error) {
	var payload whisperPayload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, fmt.Errorf("read whisper output: %w", err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisper json: %w", err)
	}
	return payload, nil
}
