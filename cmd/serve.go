package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtils "github.com/classterra/school-platform-backend/cmd/utils"
	"github.com/classterra/school-platform-backend/internal/message"
	"github.com/classterra/school-platform-backend/internal/monitor"
	"github.com/classterra/school-platform-backend/internal/serve"
)

type ServeCommand struct{}

type ServerServiceInterface interface {
	StartServe(opts serve.ServeOptions)
}

type ServerService struct{}

// Making sure that ServerService implements ServerServiceInterface
var _ ServerServiceInterface = (*ServerService)(nil)

func (s *ServerService) StartServe(opts serve.ServeOptions) {
	err := serve.Serve(opts)
	if err != nil {
		log.Fatalf("Error starting server: %s", err.Error())
	}
}

func (c *ServeCommand) Command(serverService ServerServiceInterface) *cobra.Command {
	monitorService := monitor.MonitorService{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the School Management Platform API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Parent().PersistentPreRun(cmd.Parent(), args)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			serveOpts, err := c.resolveServeOptions(&monitorService)
			if err != nil {
				log.Fatalf("Error resolving serve options: %s", err.Error())
			}
			serverService.StartServe(serveOpts)
		},
	}

	cmd.Flags().Int("port", 8000, "Port where the server will be listening on")
	cmd.Flags().String("metrics-type", "PROMETHEUS", `Metric monitor type. Options: "PROMETHEUS"`)
	cmd.Flags().String("ec256-public-key", "", "The EC256 public key used to validate JWT tokens, in PEM format")
	cmd.Flags().String("ec256-private-key", "", "The EC256 private key used to sign JWT tokens, in PEM format")
	cmd.Flags().String("cors-allowed-origins", "", `Cors URLs that are allowed to access the endpoints, separated by ","`)
	cmd.Flags().String("frontend-url", "http://localhost:3000", "The frontend URL used to build links sent in emails")
	cmd.Flags().String("platform-name", "Classterra", "The platform name used in transactional emails")
	cmd.Flags().Int("token-expiration-hours", 24, "Number of hours a JWT token is valid for")
	cmd.Flags().String("email-sender-type", string(message.MessengerTypeDryRun), `Email sender type. Options: "SENDGRID_EMAIL", "AWS_EMAIL", "DRY_RUN"`)
	cmd.Flags().String("sendgrid-api-key", "", "The API key of the SendGrid account")
	cmd.Flags().String("sendgrid-sender-address", "", "The email address that emails will be sent from through SendGrid")
	cmd.Flags().String("aws-access-key-id", "", "The AWS access key ID")
	cmd.Flags().String("aws-secret-access-key", "", "The AWS secret access key")
	cmd.Flags().String("aws-region", "", "The AWS region")
	cmd.Flags().String("aws-ses-sender-id", "", "The email address that emails will be sent from through AWS SES")

	return cmd
}

func (c *ServeCommand) resolveServeOptions(monitorService monitor.MonitorServiceInterface) (serve.ServeOptions, error) {
	metricType, err := monitor.ParseMetricType(viper.GetString("metrics-type"))
	if err != nil {
		return serve.ServeOptions{}, err
	}
	err = monitorService.Start(monitor.MetricOptions{MetricType: metricType, Environment: globalOptions.Environment})
	if err != nil {
		return serve.ServeOptions{}, err
	}

	messengerType, err := message.ParseMessengerType(viper.GetString("email-sender-type"))
	if err != nil {
		return serve.ServeOptions{}, err
	}
	emailMessengerClient, err := message.GetClient(message.MessengerOptions{
		MessengerType:         messengerType,
		Environment:           globalOptions.Environment,
		SendGridAPIKey:        viper.GetString("sendgrid-api-key"),
		SendGridSenderAddress: viper.GetString("sendgrid-sender-address"),
		AWSAccessKeyID:        viper.GetString("aws-access-key-id"),
		AWSSecretAccessKey:    viper.GetString("aws-secret-access-key"),
		AWSRegion:             viper.GetString("aws-region"),
		AWSSESSenderID:        viper.GetString("aws-ses-sender-id"),
	})
	if err != nil {
		return serve.ServeOptions{}, err
	}

	corsAllowedOrigins, err := cmdUtils.ParseCorsAllowedOrigins(viper.GetString("cors-allowed-origins"))
	if err != nil {
		return serve.ServeOptions{}, err
	}

	return serve.ServeOptions{
		Environment:          globalOptions.Environment,
		GitCommit:            globalOptions.GitCommit,
		Port:                 viper.GetInt("port"),
		Version:              globalOptions.Version,
		DatabaseDSN:          globalOptions.DatabaseURL,
		EC256PublicKey:       viper.GetString("ec256-public-key"),
		EC256PrivateKey:      viper.GetString("ec256-private-key"),
		CorsAllowedOrigins:   corsAllowedOrigins,
		FrontendURL:          viper.GetString("frontend-url"),
		PlatformName:         viper.GetString("platform-name"),
		TokenExpirationHours: viper.GetInt("token-expiration-hours"),
		MonitorService:       monitorService,
		EmailMessengerClient: emailMessengerClient,
	}, nil
}
