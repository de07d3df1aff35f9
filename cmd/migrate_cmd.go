package cmd

import (
	"embed"
	"fmt"
	"net/url"
	"os"

	"github.com/gobuffalo/pop/v6"
	"github.com/gobuffalo/pop/v6/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// EmbeddedMigrations is set by main from the repository's migrations directory.
var EmbeddedMigrations embed.FS

var migrateCmd = cobra.Command{
	Use:  "migrate",
	Long: "Migrate database structures. This will create new tables and add missing columns and indexes.",
	Run:  migrate,
}

func migrate(cmd *cobra.Command, args []string) {
	globalConfig := loadGlobalConfig(cmd.Context())

	if globalConfig.DB.Driver == "" && globalConfig.DB.URL != "" {
		u, err := url.Parse(globalConfig.DB.URL)
		if err != nil {
			logrus.Fatalf("%+v", errors.Wrap(err, "parsing db connection url"))
		}
		globalConfig.DB.Driver = u.Scheme
	}

	log := logrus.StandardLogger()

	pop.Debug = false
	if globalConfig.Logging.Level != "" {
		level, err := logrus.ParseLevel(globalConfig.Logging.Level)
		if err != nil {
			log.Fatalf("Failed to parse log level: %+v", err)
		}
		log.SetLevel(level)
		if level == logrus.DebugLevel {
			pop.Debug = true
		} else {
			// Hide pop migration logging
			pop.SetLogger(func(lvl logging.Level, s string, args ...interface{}) {})
		}
	}

	u, _ := url.Parse(globalConfig.DB.URL)
	processedURL := globalConfig.DB.URL
	if len(u.Query()) != 0 {
		processedURL = fmt.Sprintf("%s&application_name=pubhub_connect_migrations", processedURL)
	} else {
		processedURL = fmt.Sprintf("%s?application_name=pubhub_connect_migrations", processedURL)
	}

	db, err := pop.NewConnection(&pop.ConnectionDetails{
		Dialect: globalConfig.DB.Driver,
		URL:     processedURL,
		Options: map[string]string{
			"migration_table_name": "schema_migrations",
		},
	})
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "opening db connection"))
	}
	defer db.Close()

	if err := db.Open(); err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "checking database connection"))
	}

	box, err := pop.NewMigrationBox(EmbeddedMigrations, db)
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, "creating db migrator"))
	}

	mig := box.Migrator

	// turn off schema dump
	mig.SchemaPath = ""

	count, err := mig.UpTo(0)
	if err != nil {
		log.Fatalf("%v", errors.Wrap(err, "running db migrations"))
	}
	log.WithField("count", count).Info("migrations applied successfully")

	if log.Level == logrus.DebugLevel {
		if err := mig.Status(os.Stdout); err != nil {
			log.Fatalf("%+v", errors.Wrap(err, "migration status"))
		}
	}
}
