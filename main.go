package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/vouchpost/vouchpost/internal/appinit"
	"github.com/vouchpost/vouchpost/internal/background"
	"github.com/vouchpost/vouchpost/internal/controller"
	"github.com/vouchpost/vouchpost/internal/db"
	"github.com/vouchpost/vouchpost/internal/keyset"
	"github.com/vouchpost/vouchpost/internal/models/sqlmodel"
	"github.com/vouchpost/vouchpost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	var configPath string

	// Functions to be used by the cli helper
	serveFunc := getServeFunc(&configPath)
	provisionFunc := getProvisionFunc(&configPath)

	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "Start as server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "conf",
						Aliases:     []string{"c"},
						Value:       "serve.yaml",
						EnvVars:     []string{"VP_CONF"},
						Destination: &configPath,
					},
				},
				Action: serveFunc,
			},
			{
				Name:    "provision",
				Aliases: []string{"p"},
				Usage:   "Provision a console with a fresh API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "conf",
						Aliases:     []string{"c"},
						Value:       "serve.yaml",
						EnvVars:     []string{"VP_CONF"},
						Destination: &configPath,
					},
					&cli.StringFlag{
						Name:  "label",
						Usage: "A label for the console",
					},
					&cli.StringFlag{
						Name:  "operator",
						Usage: "The operator the console belongs to",
					},
					&cli.StringFlag{
						Name:  "key-label",
						Usage: "An optional label for the API key",
					},
				},
				Action: provisionFunc,
			},
		},
	}

	// Run the cli helper
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func getServeFunc(configPath *string) func(c *cli.Context) error {
	serveFunc := func(c *cli.Context) error {
		// Load serve info from `serve.yaml`
		serverInfo, err := appinit.LoadServerInfo(*configPath)
		if err != nil {
			return err
		}

		if err := appinit.SetupLogger(serverInfo.LogLevel); err != nil {
			return err
		}

		gdb, err := appinit.SetupDB(serverInfo.MySQLDSN)
		if err != nil {
			return err
		}

		// Prepare and start the analysis server that scores interaction logs
		numWorkers := serverInfo.NumWorkers
		if numWorkers <= 0 {
			numWorkers = runtime.NumCPU()
		}
		analysisServer := background.NewAnalysisServer(numWorkers)
		if err := analysisServer.Start(); err != nil {
			return err
		}

		// Resolve operator signing keys from the auth origin
		keyResolver := keyset.NewResolver(serverInfo.AuthOrigin, &http.Client{
			Timeout: 10 * time.Second,
		}, time.Duration(serverInfo.KeySetTTLSecs)*time.Second)

		serviceInfo := &service.Info{
			DB:          gdb,
			KeyStore:    &db.GormKeyStore{DB: gdb},
			Analysis:    analysisServer,
			KeyResolver: keyResolver,
			Difficulty:  serverInfo.PowDifficulty,
		}

		// Instantiate the services
		challengeSvc := &service.ChallengeService{ServiceInfo: serviceInfo}
		verificationSvc := &service.VerificationService{ServiceInfo: serviceInfo}
		consoleSvc := &service.ConsoleService{ServiceInfo: serviceInfo}

		// Instantiate controllers
		pingPongController := &controller.PingPongController{}

		challengeController := &controller.ChallengeController{
			GroupName:    "/challenge",
			ChallengeSvc: challengeSvc,
		}

		verificationController := &controller.VerificationController{
			GroupName:       "/siteverify",
			VerificationSvc: verificationSvc,
		}

		consoleController := &controller.ConsoleController{
			GroupName:      "/console",
			ConsoleSvc:     consoleSvc,
			AuthMiddleware: controller.OperatorAuthMiddleware(keyResolver, serverInfo.AuthAudience),
		}

		// Register controller handlers
		router := gin.Default()
		router.Use(controller.CORSMiddleware())
		apiv1Group := router.Group("/api/v1")
		controller.RegisterHandlers(apiv1Group, pingPongController)
		controller.RegisterHandlers(apiv1Group, challengeController)
		controller.RegisterHandlers(apiv1Group, verificationController)
		controller.RegisterHandlers(apiv1Group, consoleController)

		// Start the HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%v", serverInfo.Port),
			Handler: router,
		}

		chanError := make(chan error)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil {
				chanError <- errors.Wrap(err, "unable to start the HTTP server")
			}
		}()

		// Listen Ctrl+C signals. On receiving a signal stops the app elegantly
		chanQuit := make(chan os.Signal, 1)
		signal.Notify(chanQuit, os.Interrupt)
		select {
		case err := <-chanError:
			return err
		case <-chanQuit:
			log.Infoln("Received a Ctrl+C signal. Quitting the app...")

			// Stop the HTTP server elegantly
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			log.Infoln("Stopping the HTTP server...")
			if err := httpServer.Shutdown(ctx); err != nil {
				return errors.Wrap(err, "unable to stop the HTTP server as expected")
			}

			// Stop the analysis server
			log.Infoln("Stopping the interaction analysis server...")
			wg, err := analysisServer.Stop()
			if err != nil {
				return err
			}
			wg.Wait()
		}

		return nil
	}

	return serveFunc
}

func getProvisionFunc(configPath *string) func(c *cli.Context) error {
	provisionFunc := func(c *cli.Context) error {
		serverInfo, err := appinit.LoadServerInfo(*configPath)
		if err != nil {
			return err
		}

		if err := appinit.SetupLogger(serverInfo.LogLevel); err != nil {
			return err
		}

		gdb, err := appinit.SetupDB(serverInfo.MySQLDSN)
		if err != nil {
			return err
		}

		consoleID, err := db.CreateConsole(gdb, c.String("label"), c.String("operator"))
		if err != nil {
			return err
		}

		apiKey, err := db.CreateAPIKey(gdb, consoleID, c.String("key-label"))
		if err != nil {
			return err
		}

		// The secret and the encoding key are only ever shown here. Reveal() is the
		// deliberate escape hatch from the redacted string forms.
		fmt.Printf("Console ID:   %v\n", sqlmodel.APIKey{ConsoleID: consoleID}.ConsoleIDString())
		fmt.Printf("Site key:     %v\n", apiKey.SiteKey.Reveal())
		fmt.Printf("Encoding key: %v\n", apiKey.EncodingKey.Reveal())
		fmt.Printf("Secret:       %v\n", apiKey.Secret.Reveal())

		return nil
	}

	return provisionFunc
}
