package notifier

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/util"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectPutter : часть S3 клиента, которой достаточно outbox
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Notifier складывает письма JSON-объектами в бакет, откуда их забирает внешний почтовый сервис
type S3Notifier struct {
	client   ObjectPutter
	bucket   string
	prefix   string
	linkBase string
	now      func() time.Time
	log      logging.Logger
}

func NewS3Notifier(client ObjectPutter, bucket, prefix, linkBase string, log logging.Logger) *S3Notifier {
	return &S3Notifier{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		linkBase: linkBase,
		now:      time.Now,
		log:      log.With("component", "S3Notifier"),
	}
}

// NewS3Client : minio со статическими ключами для локального запуска, иначе стандартная цепочка AWS
func NewS3Client(ctx context.Context, cfg *config.S3Config, log logging.Logger) (*s3.Client, error) {
	if cfg.Local {
		client := s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				"minioadmin",
				"minioadmin",
				"",
			),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})

		if err := createBucketIfNotExists(ctx, client, cfg.Bucket, log); err != nil {
			return nil, err
		}
		return client, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, util.LogError(ctx, log, "[S3Notifier] ошибка загрузки AWS config", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// createBucketIfNotExists создает бакет если он не существует
func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string, log logging.Logger) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return util.LogError(ctx, log, "[S3Notifier] ошибка создания бакета", err)
	}

	log.Info(ctx, "бакет успешно создан", "bucket", bucket)
	return nil
}

func (n *S3Notifier) SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	now := n.now()
	message := newPasswordResetMessage(n.linkBase, email, token, expiresAt, now)

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("ошибка сериализации письма: %w", err)
	}

	key := n.objectKey(now)
	_, err = n.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(n.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return util.LogError(ctx, n.log, "[S3Notifier] не удалось положить письмо в outbox", err)
	}

	n.log.Debug(ctx, "письмо положено в outbox", "key", key)
	return nil
}

func (n *S3Notifier) objectKey(now time.Time) string {
	return path.Join(n.prefix, "password-reset", now.UTC().Format("2006/01/02"), uuid.New().String()+".json")
}
