package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	sc "github.com/dmitrijs2005/mealtrack/internal/server/config"
	"github.com/google/uuid"
)

// Seams over the AWS SDK so tests never reach an endpoint.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// LogFetcher reads a daily log.
type LogFetcher interface {
	Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error)
}

// ExportDocument is the JSON body written to object storage.
type ExportDocument struct {
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	ExportedAt time.Time `json:"exported_at"`
	meallog.Summary
}

// ExportService writes daily log snapshots to S3 compatible storage.
type ExportService struct {
	logs   LogFetcher
	config *sc.Config
	log    logging.Logger
	now    func() time.Time
}

func NewExportService(logs LogFetcher, cfg *sc.Config, log logging.Logger) *ExportService {
	return &ExportService{logs: logs, config: cfg, log: log.With("module", "services.export"), now: time.Now}
}

// ExportKey is the object key of one export.
func ExportKey(userID, date string) string {
	return fmt.Sprintf("users/%s/exports/%s/%s.json", userID, date, uuid.New())
}

func (s *ExportService) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, newS3PresignClient(client), nil
}

// Export uploads the log with totals and charts and returns the object key
// together with a presigned GET URL.
func (s *ExportService) Export(ctx context.Context, userID, date string) (string, string, error) {
	l, err := s.logs.Fetch(ctx, userID, date)
	if err != nil {
		return "", "", err
	}

	body, err := json.Marshal(ExportDocument{
		UserID:     userID,
		Date:       l.Date,
		ExportedAt: s.now().UTC(),
		Summary:    meallog.Summarize(l),
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal export: %w", err)
	}

	client, presigner, err := s.getClients(ctx)
	if err != nil {
		return "", "", fmt.Errorf("s3 setup: %w", err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID, l.Date)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", "", fmt.Errorf("upload export: %w", err)
	}

	ttl := s.config.ExportURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	req, err := presignGetObject(presigner, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", "", fmt.Errorf("presign export: %w", err)
	}

	s.log.Info(ctx, "daily log exported", "user_id", userID, "date", l.Date, "key", key)
	return key, req.URL, nil
}
