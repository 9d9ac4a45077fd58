package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	faceService "FaceVerify/internal/api/face/service"
	"FaceVerify/internal/config"
	"FaceVerify/pkg/inference"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	cfg     config.EngineConfig
	logger  *logrus.Logger
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "facectl",
	Short:         "Operate the face match and liveness engine from the command line",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}

		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&formatter.Formatter{TimestampFormat: "15:04:05"})
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		var err error
		cfg, err = config.LoadEngineConfig()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for model and oracle calls")
}

// newFaceService dials the model sidecar configured in the environment. The
// returned cleanup closes its connections.
func newFaceService() (faceService.IFaceService, func()) {
	client := inference.New(cfg.Inference, logger)
	return faceService.NewFaceService(client, cfg.Face, logger), client.CloseConnections
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := jsoniter.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
