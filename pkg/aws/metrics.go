package aws

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	MetricHTTPRequests = "HTTPRequests"
	MetricHTTPErrors   = "HTTPErrors"
	MetricHTTPLatency  = "HTTPLatency"
	MetricHTTP4xx      = "HTTP4xxErrors"
	MetricHTTP5xx      = "HTTP5xxErrors"

	MetricCartCheckouts   = "CartCheckouts"
	MetricOrdersCreated   = "OrdersCreated"
	MetricPaymentFailed   = "PaymentFailed"
	MetricCheckoutRefused = "CheckoutRefused"
)

// MetricPutter is the part of the CloudWatch client MetricsClient uses.
type MetricPutter interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsClient publishes data points to one CloudWatch namespace. A nil
// *MetricsClient is valid and publishes nothing.
type MetricsClient struct {
	client    MetricPutter
	namespace string
	enabled   bool
	now       func() time.Time
}

// NewMetricsClient builds a client from the environment. Publishing stays off
// unless CLOUDWATCH_ENABLED=true.
func NewMetricsClient(ctx context.Context) (*MetricsClient, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	namespace := os.Getenv("CLOUDWATCH_NAMESPACE")
	if namespace == "" {
		namespace = "StayShop"
	}
	return newMetricsClient(cloudwatch.NewFromConfig(cfg), namespace, os.Getenv("CLOUDWATCH_ENABLED") == "true"), nil
}

// NewMetricsClientWith publishes to namespace through an existing client.
func NewMetricsClientWith(client MetricPutter, namespace string) *MetricsClient {
	return newMetricsClient(client, namespace, true)
}

func newMetricsClient(client MetricPutter, namespace string, enabled bool) *MetricsClient {
	return &MetricsClient{client: client, namespace: namespace, enabled: enabled, now: time.Now}
}

// IsEnabled is nil-safe so callers can hold an unset client.
func (m *MetricsClient) IsEnabled() bool {
	return m != nil && m.enabled
}

// PutMetric sends a single data point. Dimensions are sent sorted by name.
func (m *MetricsClient) PutMetric(ctx context.Context, metricName string, value float64, unit types.StandardUnit, dimensions map[string]string) error {
	if !m.IsEnabled() {
		return nil
	}

	names := make([]string, 0, len(dimensions))
	for k := range dimensions {
		names = append(names, k)
	}
	sort.Strings(names)
	dims := make([]types.Dimension, 0, len(names))
	for _, k := range names {
		dims = append(dims, types.Dimension{Name: sdkaws.String(k), Value: sdkaws.String(dimensions[k])})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.namespace),
		MetricData: []types.MetricDatum{{
			MetricName: sdkaws.String(metricName),
			Value:      sdkaws.Float64(value),
			Unit:       unit,
			Timestamp:  sdkaws.Time(m.now()),
			Dimensions: dims,
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", metricName, err)
	}
	return nil
}

// RecordCount adds one to a counter.
func (m *MetricsClient) RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions)
}

// RecordLatency records duration in milliseconds.
func (m *MetricsClient) RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error {
	return m.PutMetric(ctx, metricName, float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions)
}

// RecordCheckout counts one successful checkout for service along with the
// number of orders it produced.
func (m *MetricsClient) RecordCheckout(ctx context.Context, service string, orders int) error {
	dims := map[string]string{"Service": service}
	if err := m.RecordCount(ctx, MetricCartCheckouts, dims); err != nil {
		return err
	}
	return m.PutMetric(ctx, MetricOrdersCreated, float64(orders), types.StandardUnitCount, dims)
}
