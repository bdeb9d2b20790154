// Package listing streams object records from paginated S3 listings.
package listing

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object is a single listed S3 object. Key has the scan prefix stripped.
type Object struct {
	Key          string
	Size         int64
	StorageClass string
}

// Lister flattens a paginated bucket listing into one object stream.
// Pages are fetched on demand as the stream is pulled.
type Lister struct {
	ctx       context.Context
	pager     *s3.ListObjectsV2Paginator
	prefixLen int
	page      []types.Object
	idx       int
}

// NewLister starts a listing of bucket, scoped to prefix when non-empty.
func NewLister(ctx context.Context, client s3.ListObjectsV2APIClient, bucket, prefix string) *Lister {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	return &Lister{
		ctx:       ctx,
		pager:     s3.NewListObjectsV2Paginator(client, input),
		prefixLen: len(prefix),
	}
}

// Next returns the next object, or io.EOF when the listing is exhausted.
func (l *Lister) Next() (Object, error) {
	for l.idx >= len(l.page) {
		if !l.pager.HasMorePages() {
			return Object{}, io.EOF
		}
		page, err := l.pager.NextPage(l.ctx)
		if err != nil {
			return Object{}, fmt.Errorf("list objects: %w", err)
		}
		l.page = page.Contents
		l.idx = 0
	}

	obj := l.page[l.idx]
	l.idx++
	key := aws.ToString(obj.Key)
	return Object{
		Key:          key[min(l.prefixLen, len(key)):],
		Size:         aws.ToInt64(obj.Size),
		StorageClass: string(obj.StorageClass),
	}, nil
}
