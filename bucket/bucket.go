// Package bucket uploads generated artifacts to S3.
package bucket

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"
)

// Upload puts a local file into the given bucket under key. An empty
// key defaults to the file's base name. The AWS region and credentials
// come from the usual environment/shared-config chain; S3_ENDPOINT
// overrides the endpoint for local stacks.
func Upload(path, bucketName, key string) error {
	if bucketName == "" {
		return fmt.Errorf("no bucket name given")
	}
	if key == "" {
		key = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg := aws.NewConfig()
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("creating aws session: %w", err)
	}

	client := s3.New(sess)
	if _, err := client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("audio/midi"),
	}); err != nil {
		return fmt.Errorf("uploading to s3://%s/%s: %w", bucketName, key, err)
	}

	logrus.WithFields(logrus.Fields{"bucket": bucketName, "key": key}).Info("uploaded artifact")
	return nil
}
