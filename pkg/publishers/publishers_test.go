package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryParsesCloudSinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: queue
    type: SQS
    sqs:
      uri: " https://sqs.eu-west-1.amazonaws.com/123/snapshots "
      region: eu-west-1
      access_key_id: AKIDEXAMPLE
      secret_access_key: secret
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:123:snapshots
      region: eu-west-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: news
      topic: snapshots
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	queue, ok := reg.ByID("queue")
	if !ok {
		t.Fatalf("queue publisher missing")
	}
	if queue.Type != TypeSQS || queue.SQS.QueueURL != "https://sqs.eu-west-1.amazonaws.com/123/snapshots" {
		t.Fatalf("unexpected sqs config %#v", queue.SQS)
	}
	if queue.SQS.Region != "eu-west-1" || queue.SQS.AccessKeyID != "AKIDEXAMPLE" {
		t.Fatalf("inline aws auth not decoded: %#v", queue.SQS.AWSAuth)
	}
	if len(reg.Enabled()) != 3 {
		t.Fatalf("expected 3 enabled publishers, got %d", len(reg.Enabled()))
	}
}

func TestValidatePublisherConfigCloudSinks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "s", Type: TypeSNS},
		{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{TopicARN: "arn"}},
		{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u", AWSAuth: AWSAuth{Region: "r", AccessKeyID: "only-id"}}},
		{ID: "p", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "p"}},
		{ID: "k", Type: "kafka"},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
