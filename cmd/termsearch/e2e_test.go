//go:build e2e

// End-to-end tests against a running termsearch service and an S3-compatible
// store such as MinIO.
//
// Prerequisites:
//   - termsearch running with configs/development.yaml
//   - the bucket named by E2E_BUCKET created on the storage endpoint
//
// Run with:
//
//	go test -v -tags=e2e -timeout=120s ./cmd/termsearch/...
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/response"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/storage"
)

type e2eConfig struct {
	ServiceURL string
	ConfigPath string
	Bucket     string
}

func loadE2EConfig() e2eConfig {
	return e2eConfig{
		ServiceURL: envOrDefault("E2E_SERVICE_URL", "http://localhost:8080"),
		ConfigPath: envOrDefault("E2E_CONFIG", "../../configs/development.yaml"),
		Bucket:     envOrDefault("E2E_BUCKET", "covenants-deed-images"),
	}
}

func TestServiceHealth(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 5 * time.Second}

	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			resp, err := client.Get(cfg.ServiceURL + path)
			if err != nil {
				t.Skipf("service unavailable: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("expected 200, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

// TestInvokeWritesArtifact uploads an OCR document, invokes the service with
// a storage notification for it, and reads back the artifact.
func TestInvokeWritesArtifact(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 30 * time.Second}
	if _, err := client.Get(cfg.ServiceURL + "/health/live"); err != nil {
		t.Skipf("service unavailable: %v", err)
	}

	svcCfg, err := config.Load(cfg.ConfigPath)
	require.NoError(t, err)
	ctx := context.Background()
	store, err := storage.NewS3Store(ctx, svcCfg.Storage)
	require.NoError(t, err)

	lookup := fmt.Sprintf("e2e/Abstract %d", time.Now().UnixNano())
	ocrKey := "ocr/json/mn-e2e-county/" + lookup + ".json"
	doc := `{"Blocks":[
		{"BlockType":"PAGE","Id":"p1"},
		{"BlockType":"LINE","Id":"l1","Text":"Lot 7, Block 2."},
		{"BlockType":"LINE","Id":"l2","Text":"shall not be occupied by any person not of the Caucasian race"}
	]}`
	require.NoError(t, store.Put(ctx, cfg.Bucket, ocrKey, []byte(doc), storage.PutOptions{ContentType: storage.ContentTypeJSON}))

	event := map[string]any{"body": map[string]any{
		"bucket":   cfg.Bucket,
		"ocr_json": ocrKey,
		"uuid":     "e2e-doc",
	}}
	payload, _ := json.Marshal(event)
	resp, err := client.Post(cfg.ServiceURL+"/invoke", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var env response.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Body.BoolHit)
	assert.Equal(t, "ocr/hits/mn-e2e-county/"+lookup+".json", *env.Body.MatchArtifact)

	artifact, err := store.Get(ctx, cfg.Bucket, *env.Body.MatchArtifact)
	require.NoError(t, err)
	var hits map[string]any
	require.NoError(t, json.Unmarshal(artifact, &hits))
	assert.Equal(t, []any{1.0}, hits["caucasian"])
	assert.Equal(t, []any{1.0}, hits["occupied by any"])
	assert.Equal(t, "e2e-doc", hits["document_id"])
}

func TestInvokeMissingDocument(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	payload := fmt.Sprintf(`{"Records":[{"s3":{"bucket":{"name":%q},"object":{"key":"ocr/json/mn-e2e-county/missing-%d.json"}}}]}`,
		cfg.Bucket, time.Now().UnixNano())
	resp, err := client.Post(cfg.ServiceURL+"/invoke", "application/json", bytes.NewReader([]byte(payload)))
	if err != nil {
		t.Skipf("service unavailable: %v", err)
	}
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
