package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-auth-nosql/internal/config"
)

// Publisher is the part of the SNS client the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier hands verification codes to an SNS topic; a subscriber on the
// topic owns actual mail delivery.
type Notifier struct {
	client   Publisher
	topicARN string
}

type codeMessage struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Code  string `json:"code"`
}

func NewNotifier(ctx context.Context, cfg *config.Config) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	opts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Notifier{client: sns.NewFromConfig(awsCfg, opts...), topicARN: cfg.SNSTopicARN}, nil
}

func (n *Notifier) SendCode(ctx context.Context, to, code string) error {
	body, err := json.Marshal(codeMessage{Type: "verification_code", Email: to, Code: code})
	if err != nil {
		return err
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String("verification_code")},
		},
	})
	if err != nil {
		return fmt.Errorf("publish verification code: %w", err)
	}
	return nil
}
