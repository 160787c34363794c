// Package main provides the catalog seeder: loads the starter medication
// catalog through the coverage API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/medisure/go-coverage/pkg/workerpool"
)

// seedMedication is one row of the starter catalog.
type seedMedication struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	CoveragePercentage float64 `json:"coverage_percentage"`
	Deductible         float64 `json:"deductible"`
	BasePrice          float64 `json:"base_price"`
}

// starterCatalog is the initial medication set loaded into fresh
// environments.
var starterCatalog = []seedMedication{
	{Code: "M1234", Name: "Aspirin1", CoveragePercentage: 80, Deductible: 10.0, BasePrice: 100.0},
	{Code: "M1235", Name: "Aspirin2", CoveragePercentage: 70, Deductible: 12.0, BasePrice: 100.0},
	{Code: "M1236", Name: "Aspirin3", CoveragePercentage: 75, Deductible: 8.0, BasePrice: 100.0},
	{Code: "M1237", Name: "Aspirin4", CoveragePercentage: 85, Deductible: 9.0, BasePrice: 100.0},
	{Code: "M1238", Name: "Aspirin5", CoveragePercentage: 90, Deductible: 7.0, BasePrice: 100.0},
	{Code: "M1239", Name: "Aspirin6", CoveragePercentage: 65, Deductible: 15.0, BasePrice: 100.0},
	{Code: "M1240", Name: "Aspirin7", CoveragePercentage: 80, Deductible: 10.0, BasePrice: 100.0},
	{Code: "M1241", Name: "Aspirin8", CoveragePercentage: 75, Deductible: 12.0, BasePrice: 100.0},
	{Code: "M1242", Name: "Aspirin9", CoveragePercentage: 85, Deductible: 11.0, BasePrice: 100.0},
	{Code: "M1243", Name: "Aspirin10", CoveragePercentage: 70, Deductible: 13.0, BasePrice: 100.0},
	{Code: "M1244", Name: "Aspirin11", CoveragePercentage: 90, Deductible: 6.0, BasePrice: 100.0},
	{Code: "M1245", Name: "Aspirin12", CoveragePercentage: 60, Deductible: 14.0, BasePrice: 100.0},
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	poolCfg := workerpool.DefaultConfig()
	poolCfg.Workers = 4

	pool, err := workerpool.New(poolCfg, func(ctx context.Context, task *workerpool.Task) *workerpool.Result {
		med := task.Payload.(seedMedication)
		if err := postMedication(ctx, httpClient, apiURL, med); err != nil {
			return &workerpool.Result{TaskID: task.ID, Success: false, Error: err}
		}
		return &workerpool.Result{TaskID: task.ID, Success: true}
	}, logger)
	if err != nil {
		logger.Fatal("worker pool creation failed", zap.Error(err))
	}

	pool.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, med := range starterCatalog {
		task := &workerpool.Task{ID: med.Code, Payload: med, Context: ctx}
		if err := pool.Submit(task); err != nil {
			logger.Error("submit failed", zap.String("code", med.Code), zap.Error(err))
		}
	}

	var succeeded, failed int
	for i := 0; i < len(starterCatalog); i++ {
		result := <-pool.Results()
		if result.Success {
			succeeded++
			logger.Info("medication seeded", zap.String("code", result.TaskID))
		} else {
			failed++
			logger.Error("seeding failed", zap.String("code", result.TaskID), zap.Error(result.Error))
		}
	}

	pool.Stop()
	logger.Info("catalog seeding finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))

	if failed > 0 {
		os.Exit(1)
	}
}

// postMedication creates one medication via the API. An existing code is
// treated as success so reruns are harmless.
func postMedication(ctx context.Context, client *http.Client, apiURL string, med seedMedication) error {
	body, err := json.Marshal(med)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/medications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusCreated:
		return nil
	case res.StatusCode == http.StatusConflict:
		return nil // already seeded
	default:
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, buf)
	}
}
