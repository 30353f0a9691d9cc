package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mixture/algorithms/windowing"
	"github.com/RyanBlaney/sonido-mixture/logging"
)

// FrameConfig controls how a signal is cut into frames and summarized
type FrameConfig struct {
	WindowSize int `json:"window_size"`
	HopSize    int `json:"hop_size"`

	// Number of equal-width bands the one-sided power spectrum is split into.
	// This is the dimension of every output row.
	Bands int `json:"bands"`

	// Added to band energies before the log so silent frames stay finite
	Floor float64 `json:"floor"`
}

// DefaultFrameConfig returns 1024-sample frames with 50% overlap and 8 bands
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		WindowSize: 1024,
		HopSize:    512,
		Bands:      8,
		Floor:      1e-10,
	}
}

func (c FrameConfig) validate() error {
	if c.WindowSize < 2 {
		return fmt.Errorf("window size must be at least 2, got %d", c.WindowSize)
	}
	if c.HopSize < 1 {
		return fmt.Errorf("hop size must be positive, got %d", c.HopSize)
	}
	if bins := c.WindowSize/2 + 1; c.Bands < 1 || c.Bands > bins {
		return fmt.Errorf("bands must be between 1 and %d, got %d", bins, c.Bands)
	}
	if !(c.Floor > 0) {
		return fmt.Errorf("floor must be positive, got %v", c.Floor)
	}
	return nil
}

// FrameFeatures turns a signal into one row of log band energies per frame.
// The result is a feature matrix ready for mixture fitting.
func FrameFeatures(signal []float64, config FrameConfig) ([][]float64, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(signal) < config.WindowSize {
		return nil, fmt.Errorf("signal has %d samples, need at least one window of %d", len(signal), config.WindowSize)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "frame_features",
		"function":  "FrameFeatures",
	})

	window := windowing.NewHann(config.WindowSize, false)
	transform := NewFFT()
	frame := make([]float64, config.WindowSize)
	bins := config.WindowSize/2 + 1

	numFrames := (len(signal)-config.WindowSize)/config.HopSize + 1
	features := make([][]float64, numFrames)

	for t := 0; t < numFrames; t++ {
		start := t * config.HopSize
		copy(frame, signal[start:start+config.WindowSize])
		if err := window.ApplyInPlace(frame); err != nil {
			return nil, err
		}

		power := transform.PowerSpectrum(frame)

		row := make([]float64, config.Bands)
		for b := 0; b < config.Bands; b++ {
			lo := b * bins / config.Bands
			hi := (b + 1) * bins / config.Bands
			energy := 0.0
			for k := lo; k < hi; k++ {
				energy += power[k]
			}
			row[b] = math.Log(energy + config.Floor)
		}
		features[t] = row
	}

	logger.Debug("Extracted frame features", logging.Fields{
		"frames": numFrames,
		"bands":  config.Bands,
	})

	return features, nil
}
