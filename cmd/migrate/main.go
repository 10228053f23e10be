package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/gloggi/ausbildung-api/internal/config"
	"github.com/gloggi/ausbildung-api/internal/database"
	"github.com/gloggi/ausbildung-api/internal/logger"
	"github.com/gloggi/ausbildung-api/internal/migrations"
)

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "apply, revert and inspect schema migrations",
		Before: func(*cli.Context) error {
			return logger.Init(os.Getenv("APP_ENV"))
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "list every step and whether it is applied",
				Action: status,
			},
			{
				Name:  "up",
				Usage: "apply steps up to --to, or all of them",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "to", Usage: "target version", Value: -1},
				},
				Action: up,
			},
			{
				Name:  "down",
				Usage: "revert steps down to --to",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "to", Usage: "target version", Required: true},
				},
				Action: down,
			},
			{
				Name:      "apply",
				Usage:     "apply a single step",
				ArgsUsage: "VERSION",
				Action: func(c *cli.Context) error {
					return single(c, (*migrations.Sequencer).Apply)
				},
			},
			{
				Name:      "revert",
				Usage:     "revert a single step",
				ArgsUsage: "VERSION",
				Action: func(c *cli.Context) error {
					return single(c, (*migrations.Sequencer).Revert)
				},
			},
			{
				Name:   "verify",
				Usage:  "check that every step reverts cleanly, without touching a database",
				Action: verify,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
	_ = zap.L().Sync()
}

func sequencer() (*migrations.Sequencer, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return migrations.NewSequencer(db, migrations.Steps())
}

func status(c *cli.Context) error {
	seq, err := sequencer()
	if err != nil {
		return err
	}
	steps, err := seq.Status(c.Context)
	if err != nil {
		return err
	}
	for _, s := range steps {
		mark, at := "[ ]", ""
		if s.Applied {
			mark = "[x]"
			at = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(c.App.Writer, "%s %04d %-45s %s\n", mark, s.Version, s.Name, at)
	}
	return nil
}

func up(c *cli.Context) error {
	seq, err := sequencer()
	if err != nil {
		return err
	}
	target := c.Int("to")
	if target < 0 {
		target = seq.Latest()
	}
	applied, err := seq.Up(c.Context, target)
	fmt.Fprintf(c.App.Writer, "applied %v\n", applied)
	return err
}

func down(c *cli.Context) error {
	seq, err := sequencer()
	if err != nil {
		return err
	}
	reverted, err := seq.Down(c.Context, c.Int("to"))
	fmt.Fprintf(c.App.Writer, "reverted %v\n", reverted)
	return err
}

func single(c *cli.Context, fn func(*migrations.Sequencer, context.Context, int) error) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one VERSION argument", 2)
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid version %q", c.Args().First()), 2)
	}
	seq, err := sequencer()
	if err != nil {
		return err
	}
	return fn(seq, c.Context, n)
}

func verify(c *cli.Context) error {
	versions, err := migrations.Verify(migrations.Steps())
	if err != nil {
		return err
	}
	latest := versions[len(versions)-1]
	fmt.Fprintf(c.App.Writer, "%d steps verified, latest schema has tables %v\n", len(versions)-1, latest.TableNames())
	return nil
}
