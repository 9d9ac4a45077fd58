package main

import (
	"context"
	"os"

	"FaceVerify/internal/api/face"
	"FaceVerify/pkg/oracle"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Report whether an image contains a face",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		fs, closeFn := newFaceService()
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		summary, err := fs.Detect(ctx, data)
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

var embedCmd = &cobra.Command{
	Use:   "embed <image>",
	Short: "Extract a 512 dimensional embedding from the best face in an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		fs, closeFn := newFaceService()
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := fs.Extract(ctx, data)
		if err != nil {
			return err
		}
		return printJSON(cmd, face.EmbeddingResponse{
			Embedding:  result.Embedding,
			Dimensions: len(result.Embedding),
			Confidence: result.Confidence,
			Model:      face.EmbeddingModelName,
			Region:     result.Region,
			LowQuality: result.LowQuality,
		})
	},
}

var challenge string

var livenessCmd = &cobra.Command{
	Use:   "liveness <image>",
	Short: "Ask the liveness oracle whether an image satisfies a challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		o, err := oracle.New(context.Background(), cfg.Oracle)
		if err != nil {
			return err
		}
		defer o.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		verdict, err := newLivenessVerifier(o).Verify(ctx, data, challenge)
		if err != nil {
			return err
		}
		return printJSON(cmd, verdict)
	},
}

func init() {
	livenessCmd.Flags().StringVarP(&challenge, "challenge", "c", "LOOK_STRAIGHT", "LOOK_STRAIGHT, BLINK, or TURN_LEFT")
	rootCmd.AddCommand(detectCmd, embedCmd, livenessCmd)
}
