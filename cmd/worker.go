package cmd

import (
	"fmt"
	"os"

	"github.com/frahmantamala/recruitment/internal/mail"
	"github.com/frahmantamala/recruitment/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start the queue consumers that run outside the request path.`,
}

var mailWorkerCmd = &cobra.Command{
	Use:   "mail",
	Short: "Start the mail worker",
	Long:  `Consume the mail queue and deliver account emails over SMTP`,
	Run: func(cmd *cobra.Command, args []string) {
		startMailWorker()
	},
}

var mailConcurrency int

func startMailWorker() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg := logger.LoggerWrapper()

	if config.Redis.Addr == "" {
		fmt.Fprintln(os.Stderr, "redis.addr is required to run the mail worker")
		os.Exit(1)
	}

	srv, mux := mail.NewWorker(redisClientOpt(config.Redis), mail.NewSMTPSender(config.Mail), lg, mailConcurrency)

	lg.Info("starting mail worker", "redis", config.Redis.Addr, "concurrency", mailConcurrency, "smtp_host", config.Mail.Host)

	// Run blocks until SIGINT or SIGTERM and then drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		lg.Error("mail worker stopped", "error", err)
		os.Exit(1)
	}
	lg.Info("mail worker shutdown complete")
}

func init() {
	mailWorkerCmd.Flags().IntVar(&mailConcurrency, "concurrency", 5, "number of mails delivered in parallel")

	workerCmd.AddCommand(mailWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
