package model

import (
	"errors"
	"fmt"
	"log"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ErrClosed = errors.New("runtime is closed")

// Options configures NewRuntime.
type Options struct {
	ModelPath      string
	CheckpointPath string
	MetadataPath   string
	LibraryPath    string
	Device         Device
	Classes        []string
}

// Runtime is an inference-only ONNX Runtime session over the ViT graph.
// Input and output tensors are allocated once and reused, so Forward calls
// are serialised.
type Runtime struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	holdsEnv     bool

	Metadata Metadata
	Weights  Weights
	Device   Device
}

func NewRuntime(opts Options, logger *log.Logger) (*Runtime, error) {
	if logger == nil {
		logger = log.Default()
	}

	metadata := DefaultMetadata(len(opts.Classes))
	if opts.MetadataPath != "" {
		var err error
		if metadata, err = LoadMetadata(opts.MetadataPath, len(opts.Classes)); err != nil {
			return nil, err
		}
	}
	if err := metadata.Validate(opts.Classes); err != nil {
		return nil, err
	}

	weights, err := LoadWeights(opts.ModelPath, opts.CheckpointPath, logger)
	if err != nil {
		return nil, err
	}

	if err := acquireEnvironment(opts.LibraryPath); err != nil {
		return nil, err
	}

	r := &Runtime{Metadata: metadata, Weights: weights, holdsEnv: true}

	r.inputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	r.outputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	device := opts.Device
	if device == "" {
		device = DeviceAuto
	}
	r.session, r.Device, err = newSession(weights.Path, metadata, r.inputTensor, r.outputTensor, device, logger)
	if err != nil {
		r.Close()
		return nil, err
	}
	logger.Printf("Using device: %s", r.Device)

	return r, nil
}

// newSession creates the session on the requested device. DeviceAuto tries
// CUDA first and falls back to the CPU provider.
func newSession(path string, metadata Metadata, input, output *ort.Tensor[float32], device Device, logger *log.Logger) (*ort.AdvancedSession, Device, error) {
	if device == DeviceCUDA || device == DeviceAuto {
		session, err := newCUDASession(path, metadata, input, output)
		if err == nil {
			return session, DeviceCUDA, nil
		}
		if device == DeviceCUDA {
			return nil, "", err
		}
		logger.Printf("CUDA unavailable (%v), falling back to CPU", err)
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return session, DeviceCPU, nil
}

func newCUDASession(path string, metadata Metadata, input, output *ort.Tensor[float32]) (*ort.AdvancedSession, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	cudaOptions, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create CUDA options: %w", err)
	}
	defer cudaOptions.Destroy()

	if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
		return nil, fmt.Errorf("failed to enable CUDA: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		options)
	if err != nil {
		return nil, fmt.Errorf("failed to create CUDA session: %w", err)
	}
	return session, nil
}

// Forward runs one pass and returns a copy of the logits.
func (r *Runtime) Forward(input []float32) ([]float32, error) {
	if len(input) != r.Metadata.InputSize() {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrBadShape, r.Metadata.InputSize(), len(input))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil, ErrClosed
	}
	copy(r.inputTensor.GetData(), input)
	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	logits := make([]float32, r.Metadata.NumClasses())
	copy(logits, r.outputTensor.GetData())
	return logits, nil
}

func (r *Runtime) NumClasses() int {
	return r.Metadata.NumClasses()
}

// Close releases the session and tensors. The shared environment is torn
// down only once no other Runtime uses it. Close is idempotent.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		r.session.Destroy()
		r.session = nil
	}
	if r.inputTensor != nil {
		r.inputTensor.Destroy()
		r.inputTensor = nil
	}
	if r.outputTensor != nil {
		r.outputTensor.Destroy()
		r.outputTensor = nil
	}
	if r.holdsEnv {
		r.holdsEnv = false
		releaseEnvironment()
	}
}
