package guardmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gopkg.in/yaml.v3"
)

// LabelThresholds represents warn/block cutoffs for one label. The gate
// only reports scores; thresholds exist for downstream consumers of
// activation events.
type LabelThresholds struct {
	Warn  *float32 `yaml:"warn" json:"warn"`
	Block *float32 `yaml:"block" json:"block"`
}

// Model wraps the ONNX session and tokenizer for the advisory identifier
// classifier. The regex detector stays authoritative; the model only adds
// scores to requests and activation events.
type Model struct {
	session    *ort.AdvancedSession
	tokenizer  *WordPieceTokenizer
	labels     []string
	thresholds map[string]LabelThresholds
	seqLen     int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// Load initializes the ONNX session, tokenizer, and thresholds from a
// bundle directory.
func Load(bundleDir string, seqLen int) (*Model, error) {
	if bundleDir == "" {
		return nil, errors.New("bundleDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}

	modelPath := filepath.Join(bundleDir, "guard.onnx")
	labelsPath := filepath.Join(bundleDir, "label_map.json")
	thresholdsPath := filepath.Join(bundleDir, "thresholds.yaml")
	vocabPath := filepath.Join(bundleDir, "tokenizer", "vocab.txt")

	// Bundle contents are checked before the runtime is initialized, so a
	// bad bundle fails with a file error rather than a session error.
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	libPath := resolveSharedLibraryPath(bundleDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	th, err := loadThresholds(thresholdsPath)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	outputShape := ort.NewShape(1, int64(len(labels)))
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:       session,
		tokenizer:     tokenizer,
		labels:        labels,
		thresholds:    th,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Score runs inference and returns per-label sigmoid probabilities.
func (m *Model) Score(text string) (map[string]float32, error) {
	if m == nil || m.session == nil || m.tokenizer == nil {
		return nil, errors.New("guard model not initialized")
	}

	inputIDs, attn := m.tokenizer.Encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	raw := m.output.GetData()
	scores := make(map[string]float32, len(m.labels))
	for i, logit := range raw {
		if i >= len(m.labels) {
			break
		}
		scores[m.labels[i]] = float32(1.0 / (1.0 + math.Exp(-float64(logit))))
	}
	return scores, nil
}

// Thresholds returns the configured warn/block cutoffs per label.
func (m *Model) Thresholds() map[string]LabelThresholds {
	if m == nil {
		return nil
	}
	return m.thresholds
}

// Close releases the ONNX session and tensors.
func (m *Model) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	if m.inputIDs != nil {
		m.inputIDs.Destroy()
		m.inputIDs = nil
	}
	if m.attentionMask != nil {
		m.attentionMask.Destroy()
		m.attentionMask = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

func loadThresholds(path string) (map[string]LabelThresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Thresholds map[string]LabelThresholds `yaml:"thresholds"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Thresholds == nil {
		wrapper.Thresholds = make(map[string]LabelThresholds)
	}
	return wrapper.Thresholds, nil
}

// resolveSharedLibraryPath attempts to locate a platform-specific
// onnxruntime shared library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
