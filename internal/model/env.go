package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// The ONNX Runtime environment is process-wide. Each Runtime holds one
// reference; the environment is destroyed when the last one is released.
var (
	envMu   sync.Mutex
	envRefs int

	initEnvironment = func(libraryPath string) error {
		if ort.IsInitialized() {
			return nil
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		return ort.InitializeEnvironment()
	}
	destroyEnvironment = func() {
		_ = ort.DestroyEnvironment()
	}
)

func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		if err := initEnvironment(libraryPath); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return
	}
	envRefs--
	if envRefs == 0 {
		destroyEnvironment()
	}
}
