package main

import (
	"bytes"
	"fmt"
	"os"

	faceService "FaceVerify/internal/api/face/service"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a.json> <b.json>",
	Short: "Compare two stored embeddings",
	Long: "Each file holds either a bare JSON array of 512 numbers or the body " +
		"returned by POST /api/v1/face/embedding.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readEmbedding(args[0])
		if err != nil {
			return err
		}
		b, err := readEmbedding(args[1])
		if err != nil {
			return err
		}

		result, err := faceService.Compare(a, b, cfg.Face.MatchThreshold)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func readEmbedding(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseEmbedding(data)
}

func parseEmbedding(data []byte) ([]float64, error) {
	data = bytes.TrimSpace(data)

	var vector []float64
	if len(data) > 0 && data[0] == '[' {
		if err := jsoniter.Unmarshal(data, &vector); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
		return vector, nil
	}

	var body struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := jsoniter.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}
	if body.Embedding == nil {
		return nil, fmt.Errorf("parse embedding: no embedding field")
	}
	return body.Embedding, nil
}
