package state

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rotblauer/orthod/params"
)

const s3UploadTimeout = 10 * time.Second

// S3KeyForImage namespaces uploaded composites in the bucket.
func S3KeyForImage(filename string) string {
	return "orthod/imagery/" + filename
}

// UploadImageS3 puts a composite in the configured bucket.
// The AWS library uses environment variables to configure itself.
func UploadImageS3(key string, jpegBytes []byte) error {
	if params.AWS_BUCKETNAME == "" {
		return fmt.Errorf("AWS_BUCKETNAME not set")
	}

	// Sessions carry shared config like region and credentials.
	sess := session.Must(session.NewSession())
	svc := s3.New(sess)

	ctx, cancel := context.WithTimeout(context.Background(), s3UploadTimeout)
	defer cancel()

	_, err := svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(params.AWS_BUCKETNAME),
		Key:           aws.String(key),
		Body:          bytes.NewReader(jpegBytes),
		ContentType:   aws.String("image/jpeg"),
		ContentLength: aws.Int64(int64(len(jpegBytes))),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == request.CanceledErrorCode {
			slog.Error("AWS S3 upload canceled due to timeout", "error", err)
		} else {
			slog.Error("Failed to upload object", "error", err)
		}
		return err
	}

	slog.Info("Uploaded image to AWS S3", "bucket", params.AWS_BUCKETNAME, "key", key)
	return nil
}

// DownloadImageS3 fetches a composite from the bucket and writes it to wr.
func DownloadImageS3(wr io.WriterAt, bucket, key string) error {
	sess := session.Must(session.NewSession())
	downloader := s3manager.NewDownloader(sess)

	slog.Info("Downloading image from S3", "bucket", bucket, "key", key)
	if _, err := downloader.Download(wr, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("download s3 object: %w", err)
	}
	return nil
}
