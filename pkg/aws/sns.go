package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher is the subset of SNS the services publish through.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte, attrs map[string]string) error
}

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient adapts the SDK client to SNSPublisher.
type SNSClient struct {
	api snsAPI
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{api: sns.NewFromConfig(cfg)}
}

// Publish sends message to topicArn. attrs become string message attributes
// so subscribers can filter on event type.
func (s *SNSClient) Publish(ctx context.Context, topicArn string, message []byte, attrs map[string]string) error {
	if topicArn == "" {
		return errors.New("sns publish: empty topic arn")
	}
	input := &sns.PublishInput{
		TopicArn: sdkaws.String(topicArn),
		Message:  sdkaws.String(string(message)),
	}
	if len(attrs) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(attrs))
		for k, v := range attrs {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(v),
			}
		}
	}
	if _, err := s.api.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", topicArn, err)
	}
	return nil
}
