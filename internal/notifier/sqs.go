package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SQSAPI is the subset of *sqs.Client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

const eventTypeAttribute = "event_type"

const orderConfirmedType = "order.confirmed"

// NewSQSClient uses static credentials when both keys are set, otherwise
// the default AWS credential chain.
func NewSQSClient(ctx context.Context, region, accessKey, secret string) (*sqs.Client, error) {
	var cfg aws.Config
	var err error

	if accessKey != "" && secret != "" {
		cfg, err = awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(region),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secret, "")),
		)
	} else {
		cfg, err = awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	}
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, evt OrderConfirmedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			eventTypeAttribute: {DataType: aws.String("String"), StringValue: aws.String(orderConfirmedType)},
		},
	})
	return err
}

// SQSConsumer long-polls the queue. A message is deleted only after the
// handler succeeds, so failures are redelivered by SQS.
type SQSConsumer struct {
	client   SQSAPI
	queueURL string
	handle   Handler
	log      *zap.Logger
	wait     int32
	pause    time.Duration
}

func NewSQSConsumer(client SQSAPI, queueURL string, handle Handler, log *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:   client,
		queueURL: queueURL,
		handle:   handle,
		log:      log,
		wait:     20,
		pause:    5 * time.Second,
	}
}

func (c *SQSConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("receive from sqs failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.pause):
			}
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       c.wait,
		MessageAttributeNames: []string{eventTypeAttribute},
	})
	if err != nil {
		return err
	}

	for _, msg := range out.Messages {
		var evt OrderConfirmedEvent
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &evt); err != nil {
			// Undecodable bodies are dropped.
			c.log.Error("discarding undecodable message", zap.String("message_id", aws.ToString(msg.MessageId)), zap.Error(err))
			c.delete(ctx, msg)
			continue
		}

		if err := c.handle(ctx, evt); err != nil {
			c.log.Warn("order confirmation delivery failed, leaving for redelivery",
				zap.Uint64("order_id", evt.OrderID),
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(err))
			continue
		}
		c.delete(ctx, msg)
	}
	return nil
}

func (c *SQSConsumer) delete(ctx context.Context, msg types.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.log.Warn("delete sqs message failed", zap.String("message_id", aws.ToString(msg.MessageId)), zap.Error(err))
	}
}
