package s3

import (
	"context"
	s3pkg "github.com/aws/aws-sdk-go-v2/service/s3"
	transport "github.com/aws/smithy-go/endpoints"
	"net/url"
)

// s3EndpointResolver addresses buckets path-style on a fixed endpoint,
// which is what S3-compatible servers like LocalStack and MinIO expect.
type s3EndpointResolver struct {
	url *url.URL
}

func (e *s3EndpointResolver) ResolveEndpoint(
	_ context.Context,
	params s3pkg.EndpointParameters,
) (transport.Endpoint, error) {
	uri := *e.url

	if params.Bucket != nil {
		uri = *uri.JoinPath(*params.Bucket)
	}

	return transport.Endpoint{
		URI: uri,
	}, nil
}
