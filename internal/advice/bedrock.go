package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const bedrockMaxTokens = 300

// ConverseAPI is the subset of the Bedrock runtime client used for advice.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockStrategy generates advice through the Bedrock Converse API.
type BedrockStrategy struct {
	api     ConverseAPI
	modelID string
}

func NewBedrockStrategy(api ConverseAPI, modelID string) *BedrockStrategy {
	if api == nil {
		panic("advice: bedrock converse client cannot be nil")
	}
	return &BedrockStrategy{api: api, modelID: modelID}
}

func (s *BedrockStrategy) Provider() Provider { return ProviderBedrock }

func (s *BedrockStrategy) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "advice.bedrock")
	defer span.End()

	out, err := s.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(s.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: SystemInstruction},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: aws.Int32(bedrockMaxTokens),
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advice: bedrock converse failed: %w", err)
	}
	return bedrockText(out)
}

func bedrockText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("advice: bedrock response is nil")
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("advice: bedrock response did not include a message output: %w", ErrMalformedResponse)
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("advice: bedrock response contained no text: %w", ErrEmptyResponse)
	}
	return text, nil
}
