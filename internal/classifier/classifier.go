package classifier

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/solariq/internal/model"
	"github.com/Brownie44l1/solariq/internal/preprocess"
)

var (
	ErrNoModel       = errors.New("no model given")
	ErrNoEncoder     = errors.New("no encoder given")
	ErrNoConditions  = errors.New("no conditions configured")
	ErrNoNormalClass = errors.New("conditions must include \"normal\"")
	ErrDuplicate     = errors.New("duplicate condition")
)

// Encoder turns a decoded image into the model input tensor.
type Encoder interface {
	Encode(img image.Image) ([]float32, error)
}

// Model runs one forward pass and returns a logit per class.
type Model interface {
	Forward(input []float32) ([]float32, error)
	NumClasses() int
}

// Config is everything Load needs to build a Classifier.
type Config struct {
	ModelPath      string
	CheckpointPath string
	MetadataPath   string
	LibraryPath    string
	Device         string
	Conditions     []Condition
}

// Classifier labels solar panel images with a condition. It holds no state
// that changes between calls.
type Classifier struct {
	model       Model
	encoder     Encoder
	conditions  []Condition
	normalIdx   int
	criticalIdx map[int]bool
	logger      *log.Logger

	now   func() time.Time
	newID func() string
}

// New wires a classifier around an already loaded model. conditions must be
// in model output order and match its width.
func New(m Model, enc Encoder, conditions []Condition, logger *log.Logger) (*Classifier, error) {
	if logger == nil {
		logger = log.Default()
	}
	if m == nil {
		return nil, ErrNoModel
	}
	if enc == nil {
		return nil, ErrNoEncoder
	}
	if len(conditions) == 0 {
		return nil, ErrNoConditions
	}
	if n := m.NumClasses(); n != len(conditions) {
		return nil, fmt.Errorf("%w: model has %d outputs, %d conditions configured", model.ErrClassMismatch, n, len(conditions))
	}

	c := &Classifier{
		model:       m,
		encoder:     enc,
		conditions:  append([]Condition(nil), conditions...),
		normalIdx:   -1,
		criticalIdx: make(map[int]bool),
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}

	seen := make(map[string]bool, len(conditions))
	for i, cond := range conditions {
		if cond.Name == "" {
			return nil, fmt.Errorf("condition %d has no name", i)
		}
		if seen[cond.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, cond.Name)
		}
		seen[cond.Name] = true

		switch cond.Name {
		case Normal:
			c.normalIdx = i
		case PhysicalDamage, ElectricalDamage:
			c.criticalIdx[i] = true
		}
	}
	if c.normalIdx < 0 {
		return nil, ErrNoNormalClass
	}

	return c, nil
}

// Load opens the ViT graph (fine-tuned checkpoint when present, base weights
// otherwise) on the selected device and builds a Classifier over it.
func Load(cfg Config, logger *log.Logger) (*Classifier, error) {
	if logger == nil {
		logger = log.Default()
	}

	conditions := cfg.Conditions
	if len(conditions) == 0 {
		conditions = DefaultConditions()
	}

	device, err := model.ParseDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	runtime, err := model.NewRuntime(model.Options{
		ModelPath:      cfg.ModelPath,
		CheckpointPath: cfg.CheckpointPath,
		MetadataPath:   cfg.MetadataPath,
		LibraryPath:    cfg.LibraryPath,
		Device:         device,
		Classes:        conditionNames(conditions),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	c, err := New(runtime, preprocess.NewFeatureExtractor(runtime.Metadata), conditions, logger)
	if err != nil {
		runtime.Close()
		return nil, err
	}
	return c, nil
}

// Conditions returns a copy of the configured classes in output order.
func (c *Classifier) Conditions() []Condition {
	return append([]Condition(nil), c.conditions...)
}

// Predict classifies the image at path. Failures never escape as errors:
// they come back as a Result with Error set.
func (c *Classifier) Predict(path string, withProbs bool) Result {
	img, _, err := preprocess.DecodeFile(path)
	if err != nil {
		return c.failure(path, fmt.Errorf("error processing image: %w", err))
	}
	return c.PredictImage(img, path, withProbs)
}

// PredictImage classifies an already decoded image. path is only recorded
// in the result.
func (c *Classifier) PredictImage(img image.Image, path string, withProbs bool) Result {
	input, err := c.encoder.Encode(img)
	if err != nil {
		return c.failure(path, fmt.Errorf("failed to preprocess image: %w", err))
	}

	logits, err := c.model.Forward(input)
	if err != nil {
		return c.failure(path, err)
	}
	if len(logits) != len(c.conditions) {
		return c.failure(path, fmt.Errorf("%w: got %d logits", model.ErrClassMismatch, len(logits)))
	}

	probs := softmax(logits)
	a := c.assess(probs)
	cond := c.conditions[a.index]

	result := Result{
		ID:            c.newID(),
		ImagePath:     path,
		Condition:     cond.Name,
		ClassIndex:    a.index,
		Confidence:    a.confidence,
		ConfidencePct: formatPercent(a.confidence),
		AlertRequired: a.alert,
		IsCritical:    a.critical,
		Description:   cond.Description,
		Action:        cond.Action,
		Timestamp:     c.now(),
	}
	if withProbs {
		result.Probabilities = make(map[string]float64, len(probs))
		for i, p := range probs {
			result.Probabilities[c.conditions[i].Name] = p
		}
	}
	return result
}

// BatchPredict runs Predict over paths one after another. A failed image
// yields an error-shaped entry and the rest still run.
func (c *Classifier) BatchPredict(paths []string, withProbs bool) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, c.Predict(path, withProbs))
	}
	return results
}

// Close releases the model if it holds native resources.
func (c *Classifier) Close() {
	if closer, ok := c.model.(interface{ Close() }); ok {
		closer.Close()
	}
}

// failure logs err and wraps it into an error-shaped result.
func (c *Classifier) failure(path string, err error) Result {
	c.logger.Printf("Prediction error for %s: %v", path, err)
	return Result{
		ID:         c.newID(),
		ImagePath:  path,
		ClassIndex: -1,
		Timestamp:  c.now(),
		Error:      err.Error(),
	}
}
