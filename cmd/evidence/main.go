package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/mdouchement/evidence/internal/caselookup"
	"github.com/mdouchement/evidence/internal/database"
	"github.com/mdouchement/evidence/internal/logger"
	"github.com/mdouchement/evidence/internal/metrics"
	"github.com/mdouchement/evidence/internal/registry"
	"github.com/mdouchement/evidence/internal/server"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
)

const (
	dbname             = "evidence.db"
	defaultLookupTTL   = time.Minute
	defaultLookupLimit = 5 * time.Second
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "evidence",
		Short:   "Evidence registry server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)
	c.AddCommand(showCmd)
	c.AddCommand(burnCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func load() (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if err := konf.Load(file.Provider(cfg), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	return konf, logger.Setup(konf.String("log.level"), konf.String("log.file"))
}

func dbnameWithPath(path string) string {
	if len(path) == 0 {
		return dbname
	}
	return filepath.Join(path, dbname)
}

func dbOptions(konf *koanf.Koanf) ([]database.Option, error) {
	allocation, err := database.ParseAllocation(konf.String("allocation"))
	if err != nil {
		return nil, err
	}

	return []database.Option{
		database.WithCodec(konf.String("codec")),
		database.WithAllocation(allocation),
	}, nil
}

func open(konf *koanf.Koanf) (database.Client, error) {
	options, err := dbOptions(konf)
	if err != nil {
		return nil, err
	}

	db, err := database.StormOpen(dbnameWithPath(konf.String("database_path")), options...)
	return db, errors.Wrap(err, "could not open database")
}

// cases returns the lookup configured by the case_lookup section.
// Only the remote lookup is cached, the local case bucket is always read directly.
func cases(konf *koanf.Koanf, db database.Client) caselookup.Lookup {
	switch endpoint := konf.String("case_lookup.endpoint"); endpoint {
	case "none":
		return caselookup.None
	case "":
		return caselookup.NewDatabase(db)
	default:
		timeout := defaultLookupLimit
		if konf.Exists("case_lookup.timeout") {
			timeout = konf.Duration("case_lookup.timeout")
		}
		var lookup caselookup.Lookup = caselookup.NewRemote(endpoint, timeout)

		ttl := defaultLookupTTL
		if konf.Exists("case_lookup.cache_ttl") {
			ttl = konf.Duration("case_lookup.cache_ttl")
		}
		if ttl <= 0 {
			return lookup
		}
		return caselookup.NewCached(lookup, ttl)
	}
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint32(id), errors.Wrap(err, "invalid id")
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			options, err := dbOptions(konf)
			if err != nil {
				return err
			}

			return database.StormInit(dbnameWithPath(konf.String("database_path")), options...)
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			options, err := dbOptions(konf)
			if err != nil {
				return err
			}

			return database.StormReIndex(dbnameWithPath(konf.String("database_path")), options...)
		},
	}

	//
	showCmd = &coral.Command{
		Use:   "show ID",
		Short: "Dump an evidence",
		Args:  coral.ExactArgs(1),
		RunE: func(_ *coral.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			konf, err := load()
			if err != nil {
				return err
			}

			db, err := open(konf)
			if err != nil {
				return err
			}
			defer db.Close()

			out, err := registry.New(db, cases(konf, db), registry.Options{}).Get(context.Background(), id)
			if err != nil {
				return err
			}

			fmt.Println(litter.Sdump(out))
			return nil
		},
	}

	//
	burnCmd = &coral.Command{
		Use:   "burn ID",
		Short: "Remove an evidence from the database",
		Args:  coral.ExactArgs(1),
		RunE: func(_ *coral.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			konf, err := load()
			if err != nil {
				return err
			}

			db, err := open(konf)
			if err != nil {
				return err
			}
			defer db.Close()

			if err = registry.New(db, nil, registry.Options{}).Delete(context.Background(), id); err != nil {
				return err
			}

			fmt.Println("Evidence", id, "burnt")
			return nil
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			db, err := open(konf)
			if err != nil {
				return err
			}
			defer db.Close()

			ioc := server.IOC{
				Version:         version,
				Database:        db,
				Cases:           cases(konf, db),
				StrictLifecycle: konf.Bool("strict_lifecycle"),
			}
			if konf.Bool("metrics") {
				ioc.Metrics = metrics.NewPrometheus()
			}

			engine := server.EchoEngine(ioc)
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			logrus.Infof("Server listening on %s", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					logrus.Infof("Removing existing %s", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
