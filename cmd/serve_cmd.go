package cmd

import (
	"context"
	"net"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zer0phucks/pubhub-connect/internal/api"
	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/observability"
	"github.com/Zer0phucks/pubhub-connect/internal/pending"
	"github.com/Zer0phucks/pubhub-connect/internal/storage"
	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

var serveCmd = cobra.Command{
	Use:  "serve",
	Long: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		serve(cmd.Context())
	},
}

func serve(ctx context.Context) {
	config, err := conf.LoadGlobal(configFile)
	if err != nil {
		logrus.WithError(err).Fatal("unable to load config")
	}

	if err := observability.ConfigureLogging(&config.Logging); err != nil {
		logrus.WithError(err).Error("unable to configure logging")
	}

	db, err := storage.Dial(config)
	if err != nil {
		logrus.Fatalf("error opening database: %+v", err)
	}
	defer db.Close()

	pendingStore, err := pending.Dial(ctx, &config.Redis)
	if err != nil {
		logrus.Fatalf("error opening pending authorization store: %+v", err)
	}
	defer pendingStore.Close()

	a := api.NewAPIWithVersion(ctx, config, db, pendingStore, utilities.Version)

	addr := net.JoinHostPort(config.API.Host, strconv.Itoa(config.API.Port))
	logrus.Infof("PubHub Connect API started on: %s", addr)

	a.ListenAndServe(ctx, addr)
	api.WaitForShutdown()
}
