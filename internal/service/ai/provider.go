package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/stylechat/internal/config"
	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/internal/service/training"
)

// Backend is the configured remote model together with the priming turn every new
// conversation starts with.
type Backend struct {
	Model  Model
	Primer string
}

// NewBackend selects the provider from cfg and prepares the primer for v.
func NewBackend(ctx context.Context, cfg config.AIConfig, v variant.Variant, tc training.Context) (*Backend, error) {
	system := cfg.SystemInstruction
	if system == "" {
		system = v.SystemInstruction
	}
	primer := InlinePrimer(v, tc)

	provider := cfg.ResolveProvider()
	if v.Delivery == variant.DeliveryUpload && provider != config.ProviderGemini {
		log.Info().Str("provider", provider).Msg("training upload needs gemini, sending examples inline")
	}

	switch provider {
	case config.ProviderGemini:
		gm, err := NewGeminiModel(ctx, GeminiOptions{
			APIKey:            cfg.GeminiAPIKey,
			Model:             cfg.GeminiModel,
			SystemInstruction: system,
			Temperature:       cfg.Temperature,
			MaxTokens:         cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		if v.Delivery == variant.DeliveryUpload && tc.Loaded() {
			// Conversations swap in the inline primer while no upload is usable.
			if err := gm.AttachTrainingFile(ctx, tc.Path, primer); err != nil {
				log.Warn().Err(err).Msg("training upload failed, sending examples inline until it succeeds")
			}
			primer = AttachedPrimer(v)
		}
		return &Backend{Model: gm, Primer: primer}, nil

	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		em, err := NewEinoModel(ctx, config.ProviderArk, chatModel, system)
		if err != nil {
			return nil, err
		}
		return &Backend{Model: em, Primer: primer}, nil

	case config.ProviderOpenAI:
		om := NewOpenAIModel(OpenAIOptions{
			APIKey:            cfg.OpenAIAPIKey,
			Model:             cfg.OpenAIModel,
			BaseURL:           cfg.OpenAIBaseURL,
			SystemInstruction: system,
			Temperature:       cfg.Temperature,
			MaxTokens:         cfg.MaxTokens,
		})
		return &Backend{Model: om, Primer: primer}, nil

	default:
		return &Backend{Model: Unavailable{}, Primer: primer}, nil
	}
}
