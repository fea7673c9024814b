package app

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hasbyte1/hash-audit/benchmark"
	"github.com/hasbyte1/hash-audit/hashing"
	"github.com/hasbyte1/hash-audit/report"
)

func hashFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "algo", Required: true, Usage: "hash algorithm"},
		&cli.StringFlag{Name: "salt-mode", Value: string(hashing.SaltNone), Usage: "how to apply salt: none, prefix or suffix"},
		&cli.StringFlag{Name: "salt", Usage: "salt value, used with --salt-mode prefix|suffix"},
	}
}

func specFromFlags(c *cli.Context) (hashing.Spec, error) {
	return hashing.NewSpec(
		hashing.Algorithm(c.String("algo")),
		hashing.SaltMode(c.String("salt-mode")),
		c.String("salt"),
	)
}

func generateCommand(cfg *Config) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a hash for a password (optionally salted).",
		Flags: append(hashFlags(),
			&cli.StringFlag{Name: "password", Required: true, Usage: "password to hash"},
		),
		Action: func(c *cli.Context) error {
			spec, err := specFromFlags(c)
			if err != nil {
				return err
			}

			digest, err := cfg.Registry.Hash(c.String("password"), spec)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.App.Writer, digest)
			return err
		},
	}
}

func verifyCommand(cfg *Config) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a password against a hash (optionally salted).",
		Flags: append(hashFlags(),
			&cli.StringFlag{Name: "password", Required: true, Usage: "password to verify"},
			&cli.StringFlag{Name: "hash", Required: true, Usage: "expected hex digest"},
		),
		Action: func(c *cli.Context) error {
			spec, err := specFromFlags(c)
			if err != nil {
				return err
			}

			ok, err := cfg.Registry.Verify(c.String("password"), c.String("hash"), spec)
			if err != nil {
				return err
			}

			if !ok {
				fmt.Fprintln(c.App.Writer, "NO MATCH")
				return cli.Exit("", ExitFailure)
			}

			_, err = fmt.Fprintln(c.App.Writer, "MATCH")
			return err
		},
	}
}

func benchmarkCommand(cfg *Config, rt *deps) *cli.Command {
	return &cli.Command{
		Name:  "benchmark",
		Usage: "Benchmark hashes-per-second and estimate attacker cost.",
		Before: func(c *cli.Context) error {
			return rt.assemble(c, cfg)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "algo", Required: true, Usage: "hash algorithm"},
			&cli.Float64Flag{Name: "seconds", Usage: "benchmark duration (default from configuration, 2.0)"},
			&cli.StringFlag{Name: "salt-mode", Value: string(hashing.SaltNone), Usage: "how to apply salt: none, prefix or suffix"},
			&cli.IntFlag{Name: "salt-len", Usage: "salt length to model salting overhead"},
			&cli.BoolFlag{Name: "no-cache", Usage: "disable benchmark caching"},
			&cli.StringFlag{Name: "output", Value: string(report.FormatJSON), Usage: "report format: json, yaml or html"},
			&cli.StringFlag{Name: "out", Usage: "output path for the report (default report.<format>)"},
		},
		Action: func(c *cli.Context) error {
			format, err := report.ParseFormat(c.String("output"))
			if err != nil {
				return cli.Exit(err.Error(), ExitUsage)
			}

			seconds := rt.config.DefaultSeconds
			if c.IsSet("seconds") {
				seconds = c.Float64("seconds")
			}

			result, err := rt.engine.Run(benchmark.Request{
				Algorithm:       hashing.Algorithm(c.String("algo")),
				DurationSeconds: seconds,
				SaltMode:        hashing.SaltMode(c.String("salt-mode")),
				SaltLen:         c.Int("salt-len"),
				UseCache:        !c.Bool("no-cache"),
			})
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = "report." + string(format)
			}
			if err := report.WriteFile(out, format, result); err != nil {
				return err
			}

			_, err = fmt.Fprintln(c.App.Writer, out)
			return err
		},
	}
}

func algorithmsCommand(cfg *Config) *cli.Command {
	return &cli.Command{
		Name:  "algorithms",
		Usage: "List the supported hash algorithms.",
		Action: func(c *cli.Context) error {
			for _, a := range cfg.Registry.Algorithms() {
				if _, err := fmt.Fprintln(c.App.Writer, a); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func cacheCommand(cfg *Config, rt *deps) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or empty the benchmark cache.",
		Before: func(c *cli.Context) error {
			return rt.assemble(c, cfg)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached benchmark configurations.",
				Action: func(c *cli.Context) error {
					ids, err := rt.store.Entries()
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s (%d entries)\n", rt.store.Dir(), len(ids))
					if len(ids) > 0 {
						fmt.Fprintln(c.App.Writer, strings.Join(ids, "\n"))
					}
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every cached benchmark result.",
				Action: func(c *cli.Context) error {
					n, err := rt.store.Clear()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.App.Writer, "removed %d entries\n", n)
					return err
				},
			},
		},
	}
}
