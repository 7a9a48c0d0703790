package retrieval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	"github.com/warmstorage/client-backend/interfaces"
)

// S3MirrorRetriever fetches pieces from an S3 bucket that mirrors provider
// content, keyed by piece CID under a fixed prefix. Mirrors are read-only
// from the client's perspective; no credentials are needed for public
// buckets.
type S3MirrorRetriever struct {
	client *s3.S3
	bucket string
	prefix string
	next   interfaces.PieceRetriever
	log    *slog.Logger
}

// NewS3MirrorRetriever creates a retriever for the given bucket. endpoint may
// be empty for AWS proper; set it for S3-compatible services. next may be
// nil, making this the last link of the chain.
func NewS3MirrorRetriever(bucket, prefix, region, endpoint string, next interfaces.PieceRetriever, logger *slog.Logger) (*S3MirrorRetriever, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3MirrorRetriever{
		client: s3.New(sess),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		next:   next,
		log:    logger,
	}, nil
}

// FetchPiece implements interfaces.PieceRetriever.
func (r *S3MirrorRetriever) FetchPiece(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions) ([]byte, error) {
	start := time.Now()
	key := path.Join(r.prefix, pieceCID.String())

	result, err := r.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		cause := fmt.Errorf("%w: s3 mirror: %w", interfaces.ErrAllRetrievalsFailed, err)
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404") {
			r.log.Debug("Piece not present in S3 mirror",
				slog.String("piece_cid", pieceCID.String()),
				slog.String("bucket", r.bucket),
				slog.String("key", key))
			cause = fmt.Errorf("%w: %w", interfaces.ErrAllRetrievalsFailed, interfaces.ErrPieceNotFound)
		}
		return r.fallback(ctx, pieceCID, client, opts, cause)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return r.fallback(ctx, pieceCID, client, opts,
			fmt.Errorf("%w: reading from s3 mirror: %w", interfaces.ErrAllRetrievalsFailed, err))
	}

	r.log.Info("Fetched piece from S3 mirror",
		slog.String("piece_cid", pieceCID.String()),
		slog.String("bucket", r.bucket),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

func (r *S3MirrorRetriever) fallback(ctx context.Context, pieceCID cid.Cid, client common.Address, opts *interfaces.FetchOptions, cause error) ([]byte, error) {
	if r.next == nil {
		return nil, cause
	}
	return r.next.FetchPiece(ctx, pieceCID, client, opts)
}
