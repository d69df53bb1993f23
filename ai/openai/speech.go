package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
)

// Speech implements ai.SpeechSynthesizer against an OpenAI-compatible
// /audio/speech endpoint. langchaingo has no TTS surface, so this talks to
// the endpoint directly. Rendered audio is written under assetDir and the
// file path is returned as the opaque asset reference.
type Speech struct {
	host     string
	model    string
	assetDir string
	client   *http.Client
	logger   *slog.Logger
}

// newSpeech is an internal constructor that returns the concrete type.
func newSpeech(config *ai.Config, assetDir string) (*Speech, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.TTSModel == "" {
		return nil, fmt.Errorf("ai config: TTSModel is required for speech synthesis")
	}
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return nil, err
	}

	return &Speech{
		host:     config.SynthHost,
		model:    config.TTSModel,
		assetDir: assetDir,
		client:   &http.Client{},
		logger:   slog.Default().With("component", "openai-speech"),
	}, nil
}

// NewSpeech creates a new speech synthesizer writing assets under assetDir.
//
// Returns ai.SpeechSynthesizer interface to enforce abstraction.
func NewSpeech(config *ai.Config, assetDir string) (ai.SpeechSynthesizer, error) {
	return newSpeech(config, assetDir)
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// SynthesizeAudio renders text to speech and returns the asset file path.
func (s *Speech) SynthesizeAudio(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ai.ErrEmptyInput
	}

	body, err := json.Marshal(speechRequest{
		Model: s.model,
		Input: text,
		Voice: "alloy",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: speech endpoint returned %d", ai.ErrUnavailable, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	// Name assets by content so repeated synthesis of the same explanation
	// overwrites rather than accumulates.
	name := fmt.Sprintf("%x.mp3", contentDigest(text, language))
	path := filepath.Join(s.assetDir, name)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return "", err
	}

	s.logger.Debug("synthesized audio asset", "path", path, "bytes", len(audio))
	return path, nil
}
