package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/IICPAS/IICPAS-sub003/internal/config"
)

const pingTimeout = 5 * time.Second

// NewElasticClient builds a client for cfg and fails unless the cluster answers.
func NewElasticClient(ctx context.Context, cfg config.ES) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Hosts,
		Username:  "elastic",
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: invalid config: %w", err)
	}
	if err = Ping(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Ping asks the cluster for its info and reports any non-2xx answer.
func Ping(ctx context.Context, client *elasticsearch.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	res, err := esapi.InfoRequest{}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("elastic: cannot reach cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elastic: cluster answered %s", res.Status())
	}
	return nil
}
