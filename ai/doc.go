// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI collaborators used in Lecturegraph.
//
// This package defines the interfaces for the external, non-deterministic
// services the pipeline depends on: entity spotting, explanation synthesis,
// translation/normalization, embeddings and speech synthesis. The core
// domain and pipeline logic depend on these abstractions rather than on
// concrete implementations.
//
// # Design Principles
//
// The package is designed around narrow collaborator interfaces:
//
//   - EntitySpotter: finds concept-like surface forms in segment payloads
//   - ExplanationSynthesizer: turns candidate definitions into an explanation
//   - Normalizer: the translation collaborator behind canonicalization
//   - Embedder: generates vector embeddings for similarity dedup
//   - SpeechSynthesizer: renders explanations to audio assets
//   - Provider: aggregates the services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Failure Semantics
//
// Collaborator calls are the pipeline's only suspension points and its only
// unreliable dependencies. Errors at this boundary are typed so that the
// pipeline's degradable/retryable handling is enforced by the type:
// ErrUnavailable marks transient failures worth retrying, while
// ErrMalformedResponse marks responses the caller should give up on.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	entities, err := provider.Spotter().Spot(ctx, ai.SegmentPayload{
//	    Kind: ai.PayloadText,
//	    Text: "Photosynthesis converts light energy into chemical energy.",
//	})
package ai
